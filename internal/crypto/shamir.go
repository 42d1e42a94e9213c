package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"raiap/internal/domain"
)

// GF(2^8) with the AES reduction polynomial x^8+x^4+x^3+x+1; 3 generates
// the multiplicative group.
var (
	gfExp [510]byte
	gfLog [256]byte
)

func init() {
	x := byte(1)
	for i := 0; i < 255; i++ {
		gfExp[i] = x
		gfLog[x] = byte(i)
		x = gfMulSlow(x, 3)
	}
	for i := 255; i < len(gfExp); i++ {
		gfExp[i] = gfExp[i-255]
	}
}

func gfMulSlow(a, b byte) byte {
	var p byte
	for b > 0 {
		if b&1 == 1 {
			p ^= a
		}
		carry := a & 0x80
		a <<= 1
		if carry != 0 {
			a ^= 0x1b
		}
		b >>= 1
	}
	return p
}

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return gfExp[int(gfLog[a])+int(gfLog[b])]
}

func gfDiv(a, b byte) byte {
	if b == 0 {
		panic("crypto: division by zero in GF(256)")
	}
	if a == 0 {
		return 0
	}
	return gfExp[int(gfLog[a])+255-int(gfLog[b])]
}

// SplitSecret splits secret into total shares such that any threshold of
// them reconstruct it and fewer reveal nothing about it.
func SplitSecret(secret []byte, threshold, total int) ([]domain.Share, error) {
	switch {
	case len(secret) == 0:
		return nil, errors.New("split: empty secret")
	case threshold < 1:
		return nil, fmt.Errorf("split: threshold %d must be at least 1", threshold)
	case total < threshold:
		return nil, fmt.Errorf("split: total %d is below threshold %d", total, threshold)
	case total > 255:
		return nil, fmt.Errorf("split: total %d exceeds 255", total)
	}

	// coeffs[i*(threshold-1)+j] is the degree j+1 coefficient for secret byte i.
	deg := threshold - 1
	coeffs := make([]byte, len(secret)*deg)
	if _, err := rand.Read(coeffs); err != nil {
		return nil, err
	}
	defer Wipe(coeffs)

	shares := make([]domain.Share, total)
	for s := range shares {
		x := byte(s + 1)
		value := make([]byte, len(secret))
		for i, b := range secret {
			// Horner from the highest coefficient down to the secret byte.
			var y byte
			for j := deg - 1; j >= 0; j-- {
				y = gfMul(y, x) ^ coeffs[i*deg+j]
			}
			value[i] = gfMul(y, x) ^ b
		}
		shares[s] = domain.Share{Index: x, Threshold: uint8(threshold), Value: value}
	}
	return shares, nil
}

// CombineShares reconstructs the secret from at least Threshold distinct
// shares. Extra shares must lie on the same polynomial.
func CombineShares(shares []domain.Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: no shares supplied", domain.ErrInsufficientShares)
	}
	threshold := shares[0].Threshold
	width := len(shares[0].Value)
	if threshold == 0 || width == 0 {
		return nil, fmt.Errorf("%w: malformed share", domain.ErrInconsistentShares)
	}

	distinct := make([]domain.Share, 0, len(shares))
	seen := make(map[uint8]int, len(shares))
	for _, sh := range shares {
		if sh.Index == 0 {
			return nil, fmt.Errorf("%w: share index 0 is reserved", domain.ErrInconsistentShares)
		}
		if sh.Threshold != threshold || len(sh.Value) != width {
			return nil, fmt.Errorf("%w: shares disagree on threshold or width", domain.ErrInconsistentShares)
		}
		if at, dup := seen[sh.Index]; dup {
			if !ConstantTimeEqual(distinct[at].Value, sh.Value) {
				return nil, fmt.Errorf("%w: conflicting values for share %d", domain.ErrInconsistentShares, sh.Index)
			}
			continue
		}
		seen[sh.Index] = len(distinct)
		distinct = append(distinct, sh)
	}
	if len(distinct) < int(threshold) {
		return nil, fmt.Errorf("%w: have %d distinct, need %d",
			domain.ErrInsufficientShares, len(distinct), threshold)
	}

	basis := distinct[:threshold]
	secret := interpolate(basis, 0)
	for _, extra := range distinct[threshold:] {
		if !ConstantTimeEqual(interpolate(basis, extra.Index), extra.Value) {
			Wipe(secret)
			return nil, fmt.Errorf("%w: share %d is off the polynomial", domain.ErrInconsistentShares, extra.Index)
		}
	}
	return secret, nil
}

// interpolate evaluates the Lagrange polynomial through points at x.
func interpolate(points []domain.Share, x byte) []byte {
	weights := make([]byte, len(points))
	for j, pj := range points {
		w := byte(1)
		for m, pm := range points {
			if m == j {
				continue
			}
			w = gfMul(w, gfDiv(x^pm.Index, pj.Index^pm.Index))
		}
		weights[j] = w
	}
	out := make([]byte, len(points[0].Value))
	for i := range out {
		var acc byte
		for j, pj := range points {
			acc ^= gfMul(pj.Value[i], weights[j])
		}
		out[i] = acc
	}
	return out
}
