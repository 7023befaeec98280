package keycodec

import "errors"

// ErrInvalidKey is returned when an encoded key fails a fixed-byte check,
// a text field embeds a 0x00 byte, or a decode runs out of bytes mid-field.
var ErrInvalidKey = errors.New("keycodec: invalid key")
