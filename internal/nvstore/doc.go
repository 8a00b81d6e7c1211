// Package nvstore provides the non-volatile backends for the persisted PIN
// hash word.
//
// Two backends implement pinauth.WordStore:
//   - EEPROM: a byte-addressable image that behaves like the AVR's on-chip
//     EEPROM (erased cells read 0xFF, unchanged bytes are not rewritten,
//     words are little-endian). The image can be mirrored to a file so it
//     survives restarts.
//   - SQLiteStore: a row in the nv_words table of the PIN pad database.
//
// Usage:
//
//	img, err := nvstore.OpenEEPROM("/var/lib/pinpad/eeprom.bin", nvstore.DefaultSize)
//	if err != nil {
//	    return err
//	}
//	store, err := pinauth.NewHashStore(img.Word(0x0000), "0258")
package nvstore
