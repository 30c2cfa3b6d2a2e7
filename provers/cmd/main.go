package main

import (
	"os"

	prover "github.com/kysee/zk-bls-stages/provers"
	"github.com/kysee/zk-bls-stages/provers/types"
)

func main() {
	prover.ProverMain(types.NewConfig(os.Args...))
}
