// Command generate-params outputs fresh accumulator group parameters, as the
// accumulator section of an esa-server config file.
package main

import (
	"flag"
	"fmt"
	"log"

	"gopkg.in/yaml.v2"

	"github.com/Bren2010/esa/crypto/group"
	"github.com/Bren2010/esa/crypto/suites"
)

var (
	bits  = flag.Int("bits", 256, "Bit length of the safe prime modulus.")
	suite = flag.String("suite", "sha256", "Cipher suite used for proof challenges.")
)

type accumulatorSection struct {
	Accumulator struct {
		Suite     string `yaml:"suite"`
		Modulus   string `yaml:"modulus"`
		Generator string `yaml:"generator"`
	} `yaml:"accumulator"`
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	flag.Parse()

	cs, err := suites.FromName(*suite)
	if err != nil {
		log.Fatal(err)
	}
	params, err := group.GenerateParams(*bits)
	if err != nil {
		log.Fatal(err)
	}

	var out accumulatorSection
	out.Accumulator.Suite = cs.Name()
	out.Accumulator.Modulus = params.Modulus.Text(16)
	out.Accumulator.Generator = params.Generator.Value().Text(16)

	raw, err := yaml.Marshal(&out)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(string(raw))
}
