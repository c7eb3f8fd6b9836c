package transcript

import (
	"encoding/json"

	"github.com/zyclonepunch/kzg-ceremony-sequencer/contribution"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/identity"
)

type wireBatch struct {
	Contributions  []contribution.Contribution `json:"contributions"`
	EcdsaSignature identity.EcdsaSignature     `json:"ecdsaSignature"`
}

func (b BatchContribution) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireBatch{Contributions: b.Contributions, EcdsaSignature: b.EcdsaSignature})
}

func (b *BatchContribution) UnmarshalJSON(data []byte) error {
	var w wireBatch
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	b.Contributions = w.Contributions
	b.EcdsaSignature = w.EcdsaSignature
	return nil
}
