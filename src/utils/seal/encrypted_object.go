package seal

import (
	"fmt"
)

// Envelope magic and the only supported version
var envelopeMagic = []byte("SEAL")

const envelopeVersion = byte(1)

// EncryptedObject is the self-describing ciphertext envelope stored in the
// blob network. The header carries everything needed to locate the policy
// and the key servers, the body is the AES-256-GCM sealed payload.
type EncryptedObject struct {
	// Full identity the data was encrypted under, hex of the raw policy
	// object id bytes
	ID string

	// Package holding the approval rule
	PackageID string

	// How many key servers must cooperate to decrypt
	Threshold int

	// Key server endpoints, aligned with Shares
	Services []string

	// Data key wrapped under each key server's derived key
	Shares [][]byte

	// AES-GCM nonce and sealed payload
	Nonce      []byte
	Ciphertext []byte
}

type decoder struct {
	buf []byte
	off int
}

func (self *decoder) readUleb128() (v uint64, err error) {
	var shift uint
	for {
		if self.off >= len(self.buf) {
			err = ErrInvalidCiphertext
			return
		}
		b := self.buf[self.off]
		self.off++
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return
		}
		shift += 7
		if shift > 63 {
			err = ErrInvalidCiphertext
			return
		}
	}
}

func (self *decoder) readByte() (v byte, err error) {
	if self.off >= len(self.buf) {
		err = ErrInvalidCiphertext
		return
	}
	v = self.buf[self.off]
	self.off++
	return
}

func (self *decoder) readBytes() (v []byte, err error) {
	size, err := self.readUleb128()
	if err != nil {
		return
	}
	if uint64(len(self.buf)-self.off) < size {
		err = ErrInvalidCiphertext
		return
	}
	v = self.buf[self.off : self.off+int(size)]
	self.off += int(size)
	return
}

func (self *decoder) readString() (v string, err error) {
	raw, err := self.readBytes()
	if err != nil {
		return
	}
	v = string(raw)
	return
}

func writeUleb128(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v&0x7f)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

func writeBytes(buf []byte, v []byte) []byte {
	buf = writeUleb128(buf, uint64(len(v)))
	return append(buf, v...)
}

func writeString(buf []byte, v string) []byte {
	return writeBytes(buf, []byte(v))
}

// Encode serializes the envelope
func (self *EncryptedObject) Encode() (out []byte) {
	out = append(out, envelopeMagic...)
	out = append(out, envelopeVersion)
	out = writeString(out, self.ID)
	out = writeString(out, self.PackageID)
	out = writeUleb128(out, uint64(self.Threshold))
	out = writeUleb128(out, uint64(len(self.Services)))
	for i := range self.Services {
		out = writeString(out, self.Services[i])
		out = writeBytes(out, self.Shares[i])
	}
	out = writeBytes(out, self.Nonce)
	out = writeBytes(out, self.Ciphertext)
	return
}

// ParseEncryptedObject decodes the envelope header and body
func ParseEncryptedObject(data []byte) (self *EncryptedObject, err error) {
	if len(data) < len(envelopeMagic)+1 || string(data[:len(envelopeMagic)]) != string(envelopeMagic) {
		err = fmt.Errorf("%w: bad magic", ErrInvalidCiphertext)
		return
	}
	if data[len(envelopeMagic)] != envelopeVersion {
		err = fmt.Errorf("%w: unsupported version %d", ErrInvalidCiphertext, data[len(envelopeMagic)])
		return
	}

	dec := &decoder{buf: data, off: len(envelopeMagic) + 1}
	self = new(EncryptedObject)

	if self.ID, err = dec.readString(); err != nil {
		return
	}
	if self.PackageID, err = dec.readString(); err != nil {
		return
	}
	threshold, err := dec.readUleb128()
	if err != nil {
		return
	}
	self.Threshold = int(threshold)

	numServices, err := dec.readUleb128()
	if err != nil {
		return
	}
	for i := uint64(0); i < numServices; i++ {
		var service string
		var share []byte
		if service, err = dec.readString(); err != nil {
			return
		}
		if share, err = dec.readBytes(); err != nil {
			return
		}
		self.Services = append(self.Services, service)
		self.Shares = append(self.Shares, share)
	}

	if self.Nonce, err = dec.readBytes(); err != nil {
		return
	}
	if self.Ciphertext, err = dec.readBytes(); err != nil {
		return
	}
	return
}
