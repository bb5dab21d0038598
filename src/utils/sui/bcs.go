package sui

import (
	"encoding/binary"
)

// Minimal BCS encoder, covers what the transaction kind serialization needs:
// ULEB128 length prefixes, little endian integers and fixed size addresses.
type Encoder struct {
	buf []byte
}

func (self *Encoder) Bytes() []byte {
	return self.buf
}

func (self *Encoder) WriteUleb128(v uint64) {
	for v >= 0x80 {
		self.buf = append(self.buf, byte(v&0x7f)|0x80)
		v >>= 7
	}
	self.buf = append(self.buf, byte(v))
}

func (self *Encoder) WriteU8(v byte) {
	self.buf = append(self.buf, v)
}

func (self *Encoder) WriteU16(v uint16) {
	self.buf = binary.LittleEndian.AppendUint16(self.buf, v)
}

func (self *Encoder) WriteU64(v uint64) {
	self.buf = binary.LittleEndian.AppendUint64(self.buf, v)
}

// WriteBytes emits a ULEB128 length-prefixed byte vector
func (self *Encoder) WriteBytes(v []byte) {
	self.WriteUleb128(uint64(len(v)))
	self.buf = append(self.buf, v...)
}

func (self *Encoder) WriteString(v string) {
	self.WriteBytes([]byte(v))
}

// WriteAddress emits a fixed 32 byte account or object address
func (self *Encoder) WriteAddress(v Address) {
	self.buf = append(self.buf, v[:]...)
}
