package service

import (
	"math/rand/v2"
	"strconv"
)

// CodeGenerator draws access-code values. Injected so tests can supply a
// deterministic sequence instead of patching global randomness.
type CodeGenerator interface {
	// Code returns a 6-digit numeric string in [100000, 999999].
	Code() string
}

// randCodeGenerator draws from the process-wide random source, which is
// safe for concurrent use.
type randCodeGenerator struct{}

// NewCodeGenerator returns the default random code generator.
func NewCodeGenerator() CodeGenerator {
	return randCodeGenerator{}
}

func (randCodeGenerator) Code() string {
	return strconv.Itoa(100000 + rand.IntN(900000))
}
