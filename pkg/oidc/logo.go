package oidc

// LogoAction is what UpdateClientLogo will do for a given client and image.
type LogoAction int

const (
	// LogoNoop: no current logo and nothing to upload.
	LogoNoop LogoAction = iota
	// LogoRemove: the client has a logo and no image was supplied.
	LogoRemove
	// LogoUpload: an image was supplied; it replaces any current logo.
	LogoUpload
)

func (a LogoAction) String() string {
	switch a {
	case LogoNoop:
		return "noop"
	case LogoRemove:
		return "remove"
	case LogoUpload:
		return "upload"
	default:
		return "unknown"
	}
}

// DecideLogoAction infers the caller's intent from the client's current
// hasLogo flag and the optional new image.
//
//	hasLogo  image    action
//	true     nil      remove
//	false    nil      noop
//	any      non-nil  upload
func DecideLogoAction(hasLogo bool, image *Image) LogoAction {
	switch {
	case image != nil:
		return LogoUpload
	case hasLogo:
		return LogoRemove
	default:
		return LogoNoop
	}
}
