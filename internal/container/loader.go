package container

import (
	"unicode/utf16"

	"github.com/sigmaraw/x3fcore/internal/xerr"
)

// PropertyList is a decoded SECp section: name/value pairs, UTF-16LE on
// disk, decoded to UTF-8.
type PropertyList struct {
	Entries map[string]string
}

// LoadProperty decodes a SECp entry's body (the bytes past PropertyHeader)
// into a name-indexed map, reading the name_off/value_off pair table
// followed by the UTF-16LE heap.
func LoadProperty(h PropertyHeader, body []byte) (PropertyList, error) {
	pairsStart := 0
	pairsSize := int(h.NumProps) * PropertyPairSize
	if pairsSize > len(body) {
		return PropertyList{}, xerr.New(xerr.MalformedHeader, "property pair table (%d bytes) exceeds body (%d)", pairsSize, len(body))
	}
	heap := body[pairsStart+pairsSize:]

	entries := make(map[string]string, h.NumProps)
	for i := 0; i < int(h.NumProps); i++ {
		off := pairsStart + i*PropertyPairSize
		nameOff := le32(body[off : off+4])
		valueOff := le32(body[off+4 : off+8])

		name, err := utf16zString(heap, int(nameOff)*2)
		if err != nil {
			return PropertyList{}, xerr.Wrap(xerr.MalformedHeader, err, "property %d name", i)
		}
		value, err := utf16zString(heap, int(valueOff)*2)
		if err != nil {
			return PropertyList{}, xerr.Wrap(xerr.MalformedHeader, err, "property %d value", i)
		}
		entries[name] = value
	}
	return PropertyList{Entries: entries}, nil
}

// utf16zString decodes a NUL-terminated UTF-16LE string starting at
// byteOffset within heap.
func utf16zString(heap []byte, byteOffset int) (string, error) {
	if byteOffset < 0 || byteOffset > len(heap) {
		return "", xerr.New(xerr.MalformedHeader, "utf16 offset %d out of range (heap %d bytes)", byteOffset, len(heap))
	}
	var units []uint16
	for p := byteOffset; p+2 <= len(heap); p += 2 {
		u := uint16(heap[p]) | uint16(heap[p+1])<<8
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), nil
}
