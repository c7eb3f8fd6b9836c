package main

import (
	"github.com/zyclonepunch/kzg-ceremony-sequencer/bls"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/contribution"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/identity"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/utils"
)

// runSelfTest exercises the full contribution pipeline against freshly
// sampled entropy before the server starts accepting traffic: derive tau,
// apply it to an entropy-free sub-ceremony, and validate the result. A
// failure here means the cryptographic stack is broken regardless of
// network or storage configuration, so it is treated as fatal by the
// caller.
func runSelfTest() error {
	entropy := utils.GetRandom(64)
	tau, err := bls.GenerateTau(entropy)
	if err != nil {
		return err
	}

	c := contribution.NewEntropyFree(4, 2)
	if err := c.AddTau(tau, identity.None()); err != nil {
		return err
	}
	utils.Assert(c.HasEntropy())

	return c.Validate()
}
