package spectrum

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strings"

	algofft "github.com/cwbudde/algo-fft"
	dspfft "github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Errors returned by transform backends.
var (
	ErrUnknownBackend = errors.New("spectrum: unknown FFT backend")
	ErrLengthMismatch = errors.New("spectrum: dst and src lengths differ")
)

// Backend names accepted by NewTransformer.
const (
	BackendAuto    = "auto"
	BackendAlgoFFT = "algo-fft"
	BackendGonum   = "gonum"
	BackendGoDSP   = "go-dsp"
	BackendDFT     = "dft"
)

// Transformer computes an unnormalized forward DFT,
// X[k] = sum_j x[j] * exp(-2*pi*i*j*k/n).
//
// Forward must not modify src and must be safe for concurrent use.
type Transformer interface {
	Name() string
	Forward(dst, src []complex128) error
}

// NewTransformer returns the backend registered under name. An empty name
// selects BackendAuto.
func NewTransformer(name string) (Transformer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendAuto:
		return Auto{}, nil
	case BackendAlgoFFT:
		return AlgoFFT{}, nil
	case BackendGonum:
		return Gonum{}, nil
	case BackendGoDSP:
		return GoDSP{}, nil
	case BackendDFT:
		return DFT{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// Backends lists the names accepted by NewTransformer.
func Backends() []string {
	return []string{BackendAuto, BackendAlgoFFT, BackendGonum, BackendGoDSP, BackendDFT}
}

func checkLen(dst, src []complex128) error {
	if len(dst) != len(src) {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(dst), len(src))
	}
	return nil
}

// AlgoFFT plans a transform with algo-fft for every call.
type AlgoFFT struct{}

// Name implements Transformer.
func (AlgoFFT) Name() string { return BackendAlgoFFT }

// Forward implements Transformer.
func (AlgoFFT) Forward(dst, src []complex128) error {
	if err := checkLen(dst, src); err != nil {
		return err
	}
	if len(src) == 0 {
		return nil
	}

	plan, err := algofft.NewPlan64(len(src))
	if err != nil {
		return fmt.Errorf("algo-fft plan for %d points: %w", len(src), err)
	}
	return plan.Forward(dst, src)
}

// Gonum uses the FFTPACK port in gonum's dsp/fourier.
type Gonum struct{}

// Name implements Transformer.
func (Gonum) Name() string { return BackendGonum }

// Forward implements Transformer.
func (Gonum) Forward(dst, src []complex128) error {
	if err := checkLen(dst, src); err != nil {
		return err
	}
	if len(src) == 0 {
		return nil
	}

	fourier.NewCmplxFFT(len(src)).Coefficients(dst, src)
	return nil
}

// GoDSP uses go-dsp, which handles arbitrary lengths with Bluestein's
// algorithm in O(n log n).
type GoDSP struct{}

// Name implements Transformer.
func (GoDSP) Name() string { return BackendGoDSP }

// Forward implements Transformer.
func (GoDSP) Forward(dst, src []complex128) error {
	if err := checkLen(dst, src); err != nil {
		return err
	}
	if len(src) == 0 {
		return nil
	}

	copy(dst, dspfft.FFT(src))
	return nil
}

// Auto picks algo-fft for power-of-two lengths and go-dsp otherwise.
type Auto struct{}

// Name implements Transformer.
func (Auto) Name() string { return BackendAuto }

// Forward implements Transformer.
func (Auto) Forward(dst, src []complex128) error {
	n := len(src)
	if n > 0 && bits.OnesCount(uint(n)) == 1 {
		return AlgoFFT{}.Forward(dst, src)
	}
	return GoDSP{}.Forward(dst, src)
}

// DFT is the direct O(n^2) transform. It is only practical for short
// inputs and serves as a reference for the fast backends.
type DFT struct{}

// Name implements Transformer.
func (DFT) Name() string { return BackendDFT }

// Forward implements Transformer.
func (DFT) Forward(dst, src []complex128) error {
	if err := checkLen(dst, src); err != nil {
		return err
	}

	n := len(src)
	for k := range n {
		var acc complex128
		for j, x := range src {
			// Reduce j*k mod n first to keep the angle small.
			angle := -2 * math.Pi * float64((j*k)%n) / float64(n)
			acc += x * complex(math.Cos(angle), math.Sin(angle))
		}
		dst[k] = acc
	}
	return nil
}
