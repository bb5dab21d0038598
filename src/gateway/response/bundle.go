package response

import (
	"github.com/isopod-iot/sealer/src/retrieve"
)

type Bundle struct {
	TransportationID string             `json:"transportation_id"`
	Readings         []retrieve.Reading `json:"readings"`
}
