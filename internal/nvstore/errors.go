package nvstore

import "errors"

var (
	// ErrOutOfRange is returned for an access beyond the end of the image.
	ErrOutOfRange = errors.New("nvstore: address out of range")

	// ErrImageSize is returned when an image file does not match the
	// configured EEPROM size.
	ErrImageSize = errors.New("nvstore: image size mismatch")

	// ErrPersist is returned when the image could not be written back to
	// its file.
	ErrPersist = errors.New("nvstore: persisting image failed")
)
