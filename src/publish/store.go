package publish

import (
	"errors"
	"fmt"

	"github.com/isopod-iot/sealer/src/utils/model"

	"gorm.io/gorm"
)

// advanceAndCascade moves a payload to the target status and, in the same
// transaction, advances the owning batch iff every sibling payload already
// reached that status. The batch update is a single guarded statement, there
// is no window between checking the siblings and writing the batch row.
func advanceAndCascade(tx *gorm.DB, payloadId, batchId string, to model.Status) (payloadAdvanced, batchAdvanced bool, err error) {
	res := tx.Model(&model.Payload{}).
		Where("id = ? AND status <> ?", payloadId, to).
		Update("status", to)
	if res.Error != nil {
		err = res.Error
		return
	}
	payloadAdvanced = res.RowsAffected > 0

	res = tx.Exec(`UPDATE batches SET status = ?, updated_at = NOW()
		WHERE id = ?
		AND status <> ?
		AND NOT EXISTS (
			SELECT 1 FROM payloads
			WHERE payloads.batch_id = batches.id
			AND payloads.status <> ?
		)`, to, batchId, to, to)
	if res.Error != nil {
		err = res.Error
		return
	}
	batchAdvanced = res.RowsAffected > 0
	return
}

// getAllowlistChain loads the allowlist row by its on-chain object id together
// with the payload and metadata it belongs to. Broken links are typed errors,
// the caller treats them as fatal for the unit of work.
func getAllowlistChain(tx *gorm.DB, allowlistId string) (allowlist *model.Allowlist, payload *model.Payload, err error) {
	allowlist = new(model.Allowlist)
	err = tx.Where("allowlist_id = ?", allowlistId).
		First(allowlist).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = fmt.Errorf("%w: %s", ErrAllowlistNotFound, allowlistId)
		return
	}
	if err != nil {
		return
	}

	payload = new(model.Payload)
	err = tx.Preload("Metadata").
		Where("id = ?", allowlist.PayloadID).
		First(payload).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = fmt.Errorf("%w: %s", ErrPayloadNotFound, allowlist.PayloadID)
		return
	}
	if err != nil {
		return
	}

	if payload.Metadata == nil {
		err = fmt.Errorf("%w: payload %s", ErrMetadataNotFound, payload.ID)
		return
	}
	return
}
