package response

import (
	"github.com/isopod-iot/sealer/src/utils/model"
)

type Transportation struct {
	ID          string `json:"id"`
	DeviceID    string `json:"device_id"`
	Name        string `json:"name,omitempty"`
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
}

func TransportationsToResponse(transportations []model.Transportation) (out []Transportation) {
	out = make([]Transportation, 0, len(transportations))
	for _, t := range transportations {
		out = append(out, Transportation{
			ID:          t.ID,
			DeviceID:    t.DeviceID,
			Name:        t.Name,
			Origin:      t.Origin,
			Destination: t.Destination,
		})
	}
	return
}
