package bluefruit

// Marshaling of SDEP command IDs in little-endian order.

func marshalUint16(n uint16) []byte {
	return []byte{byte(n & 0xFF), byte(n >> 8)}
}

func unmarshalUint16(v []byte) uint16 {
	return uint16(v[0]) | uint16(v[1])<<8
}
