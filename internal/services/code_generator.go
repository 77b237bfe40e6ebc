package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/291e/bogofit-verify/domain"
)

// Uppercase alphanumeric keeps codes human-typable over voice and avoids
// lowercase/uppercase confusion on entry; comparison is case-insensitive.
var codeAlphabet = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// CodeGeneratorImpl implements domain.CodeGenerator using crypto/rand. A
// general-purpose PRNG must not be substituted here: the code is an
// account-proof token.
type CodeGeneratorImpl struct {
	length int
}

// NewCodeGenerator creates a code generator producing codes of the given
// length. Lengths below one fall back to six characters.
func NewCodeGenerator(length int) domain.CodeGenerator {
	if length < 1 {
		length = 6
	}
	return &CodeGeneratorImpl{length: length}
}

// Generate implements domain.CodeGenerator.
func (g *CodeGeneratorImpl) Generate() (string, error) {
	b := make([]rune, g.length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random code character: %w", err)
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// Compile-time interface compliance verification
var _ domain.CodeGenerator = (*CodeGeneratorImpl)(nil)
