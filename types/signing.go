package types

import (
	"crypto/sha256"
	"fmt"

	zrntcommon "github.com/protolambda/zrnt/eth2/beacon/common"
	"github.com/protolambda/ztyp/tree"
)

// ComputeDomain computes the BLS signature domain:
// domain = domain_type || fork_data_root[:28]
// where fork_data_root = hash_tree_root(ForkData(fork_version, genesis_validators_root)).
func ComputeDomain(domainType []byte, forkVersion []byte, genesisValidatorsRoot []byte) ([32]byte, error) {
	var domain [32]byte

	if len(domainType) != 4 {
		return domain, fmt.Errorf("domainType must be 4 bytes, got %d", len(domainType))
	}
	if len(forkVersion) != 4 {
		return domain, fmt.Errorf("forkVersion must be 4 bytes, got %d", len(forkVersion))
	}
	if len(genesisValidatorsRoot) != 32 {
		return domain, fmt.Errorf("genesisValidatorsRoot must be 32 bytes, got %d", len(genesisValidatorsRoot))
	}

	// fork_data_root: fork_version as a zero-padded 32-byte chunk, hashed
	// with the genesis validators root
	var forkVersionChunk [32]byte
	copy(forkVersionChunk[:4], forkVersion[:4])

	hasher := sha256.New()
	hasher.Write(forkVersionChunk[:])
	hasher.Write(genesisValidatorsRoot[:32])
	forkDataRoot := hasher.Sum(nil)

	copy(domain[:4], domainType[:4])
	copy(domain[4:], forkDataRoot[:28])

	return domain, nil
}

// SigningRoot computes the 32-byte message actually signed by a committee:
// hash_tree_root(SigningData(hash_tree_root(header), domain)). The core
// pipeline accepts any 32-byte message; this is the beacon-chain glue for
// producing one from a block header.
func SigningRoot(header *zrntcommon.BeaconBlockHeader, domain [32]byte) [32]byte {
	root := header.HashTreeRoot(tree.GetHashFn())
	return [32]byte(zrntcommon.ComputeSigningRoot(root, zrntcommon.BLSDomain(domain)))
}
