package retrieve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/isopod-iot/sealer/src/utils/config"
	"github.com/isopod-iot/sealer/src/utils/seal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

const testAddress = "0x5567f72d26a22eaa41eacbcb90393e1e6eed6a0a86ebed1e865a99d82bf3e9cc"

// fakeReader serves envelopes from memory
type fakeReader struct {
	blobs map[string][]byte
}

func (self *fakeReader) Read(ctx context.Context, blobId string) (data []byte, err error) {
	data, ok := self.blobs[blobId]
	if !ok {
		err = fmt.Errorf("unknown blob %s", blobId)
	}
	return
}

// fakeDecrypter echoes the envelope identity as a JSON reading and remembers
// the approval bytes it was handed
type fakeDecrypter struct {
	failFor   string
	malformed bool
	approvals [][]byte
}

func (self *fakeDecrypter) Decrypt(ctx context.Context, data []byte, session *seal.SessionKey, approvalTxBytes []byte) (plaintext []byte, err error) {
	object, err := seal.ParseEncryptedObject(data)
	if err != nil {
		return
	}
	if object.ID == self.failFor {
		return nil, errors.New("key servers unavailable")
	}
	self.approvals = append(self.approvals, approvalTxBytes)
	if self.malformed {
		return []byte("not json"), nil
	}
	return []byte(fmt.Sprintf(`{"identity":%q}`, object.ID)), nil
}

type ServiceTestSuite struct {
	suite.Suite
	config *config.Config
}

func (s *ServiceTestSuite) SetupSuite() {
	s.config = config.Default()
	s.config.Chain.PackageId = "0x0fd2bef42b3b8ddedf6eb8d1749bbb551dcb2c9b0ed9b337ef79062bb9ff0b77"
}

func (s *ServiceTestSuite) envelope(identity string) []byte {
	object := &seal.EncryptedObject{
		ID:         identity,
		PackageID:  s.config.Chain.PackageId,
		Threshold:  2,
		Services:   []string{"https://ks1.example"},
		Shares:     [][]byte{{1, 2, 3}},
		Nonce:      make([]byte, 12),
		Ciphertext: []byte("sealed"),
	}
	return object.Encode()
}

func (s *ServiceTestSuite) session() *seal.SessionKey {
	session := seal.NewSessionKey(testAddress, s.config.Chain.PackageId, s.config.Seal.SessionTTLMin)
	session.SetPersonalMessageSignature("AAfakewalletsignature")
	return session
}

func (s *ServiceTestSuite) newService(reader BlobReader, decrypter Decrypter) *Service {
	return NewService(s.config).
		WithBlobReader(reader).
		WithDecrypter(decrypter)
}

func (s *ServiceTestSuite) TestOrderIsPreserved() {
	reader := &fakeReader{blobs: map[string][]byte{
		"blob-1": s.envelope("0a"),
		"blob-2": s.envelope("0b"),
		"blob-3": s.envelope("0c"),
	}}
	decrypter := &fakeDecrypter{}
	service := s.newService(reader, decrypter)

	blobs := []publishedBlob{
		{BlobID: "blob-1", AllowlistID: "0x1"},
		{BlobID: "blob-2", AllowlistID: "0x2"},
		{BlobID: "blob-3", AllowlistID: "0x3"},
	}

	var readings []Reading
	for _, blob := range blobs {
		reading, err := service.retrieveBlob(context.Background(), blob, s.session())
		assert.NoError(s.T(), err)
		readings = append(readings, reading)
	}

	assert.Len(s.T(), readings, 3)
	for i, blob := range blobs {
		assert.Equal(s.T(), blob.BlobID, readings[i].BlobID)

		var decoded map[string]string
		assert.NoError(s.T(), json.Unmarshal(readings[i].Data, &decoded))
	}

	// One approval transaction per blob
	assert.Len(s.T(), decrypter.approvals, 3)
	assert.NotEqual(s.T(), decrypter.approvals[0], decrypter.approvals[1])
}

func (s *ServiceTestSuite) TestFailingBlobAborts() {
	reader := &fakeReader{blobs: map[string][]byte{
		"blob-1": s.envelope("0a"),
	}}
	service := s.newService(reader, &fakeDecrypter{failFor: "0a"})

	_, err := service.retrieveBlob(context.Background(), publishedBlob{BlobID: "blob-1", AllowlistID: "0x1"}, s.session())
	assert.Error(s.T(), err)
}

func (s *ServiceTestSuite) TestMissingBlobAborts() {
	service := s.newService(&fakeReader{blobs: map[string][]byte{}}, &fakeDecrypter{})

	_, err := service.retrieveBlob(context.Background(), publishedBlob{BlobID: "missing", AllowlistID: "0x1"}, s.session())
	assert.Error(s.T(), err)
}

func (s *ServiceTestSuite) TestMalformedReadingIsRejected() {
	reader := &fakeReader{blobs: map[string][]byte{
		"blob-1": s.envelope("0a"),
	}}
	service := s.newService(reader, &fakeDecrypter{malformed: true})

	_, err := service.retrieveBlob(context.Background(), publishedBlob{BlobID: "blob-1", AllowlistID: "0x1"}, s.session())
	assert.ErrorIs(s.T(), err, ErrMalformedReading)
}
