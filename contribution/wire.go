package contribution

import (
	"encoding/json"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

	"github.com/zyclonepunch/kzg-ceremony-sequencer/bls"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/identity"
)

// wirePowers mirrors the "powersOfTau" JSON object of spec §6.
type wirePowers struct {
	G1Powers []string `json:"G1Powers"`
	G2Powers []string `json:"G2Powers"`
}

// wireContribution mirrors one element of a BatchContribution's JSON array.
type wireContribution struct {
	NumG1Powers  int                   `json:"numG1Powers"`
	NumG2Powers  int                   `json:"numG2Powers"`
	PowersOfTau  wirePowers            `json:"powersOfTau"`
	PotPubkey    string                `json:"potPubkey"`
	BlsSignature identity.BlsSignature `json:"blsSignature"`
}

// MarshalJSON renders the contribution in the wire format of spec §6.
func (c Contribution) MarshalJSON() ([]byte, error) {
	g1hex := make([]string, len(c.Powers.G1))
	for i, p := range c.Powers.G1 {
		g1hex[i] = bls.EncodeG1Hex(p)
	}
	g2hex := make([]string, len(c.Powers.G2))
	for i, p := range c.Powers.G2 {
		g2hex[i] = bls.EncodeG2Hex(p)
	}

	w := wireContribution{
		NumG1Powers:  len(c.Powers.G1),
		NumG2Powers:  len(c.Powers.G2),
		PowersOfTau:  wirePowers{G1Powers: g1hex, G2Powers: g2hex},
		PotPubkey:    bls.EncodeG2Hex(c.PotPubkey),
		BlsSignature: c.BlsSignature,
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses the wire format. Each power and the pot_pubkey are
// decoded with bls.DecodeG1Hex/DecodeG2Hex, which reject points that are at
// infinity, off the curve or outside the prime-order subgroup. The powers
// are not checked against each other here.
func (c *Contribution) UnmarshalJSON(data []byte) error {
	var w wireContribution
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	if len(w.PowersOfTau.G1Powers) != w.NumG1Powers {
		return fmt.Errorf("contribution: numG1Powers=%d but %d G1Powers present", w.NumG1Powers, len(w.PowersOfTau.G1Powers))
	}
	if len(w.PowersOfTau.G2Powers) != w.NumG2Powers {
		return fmt.Errorf("contribution: numG2Powers=%d but %d G2Powers present", w.NumG2Powers, len(w.PowersOfTau.G2Powers))
	}

	g1 := make([]bls12381.G1Affine, len(w.PowersOfTau.G1Powers))
	for i, s := range w.PowersOfTau.G1Powers {
		p, err := bls.DecodeG1Hex(s)
		if err != nil {
			return fmt.Errorf("g1Powers[%d]: %w", i, err)
		}
		g1[i] = p
	}

	g2 := make([]bls12381.G2Affine, len(w.PowersOfTau.G2Powers))
	for i, s := range w.PowersOfTau.G2Powers {
		p, err := bls.DecodeG2Hex(s)
		if err != nil {
			return fmt.Errorf("g2Powers[%d]: %w", i, err)
		}
		g2[i] = p
	}

	potPubkey, err := bls.DecodeG2Hex(w.PotPubkey)
	if err != nil {
		return fmt.Errorf("potPubkey: %w", err)
	}

	c.Powers = Powers{G1: g1, G2: g2}
	c.PotPubkey = potPubkey
	c.BlsSignature = w.BlsSignature
	return nil
}
