// Package neural provides the fixed-topology decision network evaluated
// once per creature per tick.
package neural

import "math"

// Network dimensions (compile-time constants for array sizing).
const (
	NumInputs  = 4 // food dist, threat dist, energy fraction, mate dist
	NumHidden  = 8
	NumOutputs = 2 // turn angle, speed factor

	// WeightCount is the flat weight-vector length a genome must carry:
	// hidden weights+biases then output weights+biases.
	WeightCount = NumHidden*NumInputs + NumHidden + NumOutputs*NumHidden + NumOutputs
)

// InitWeightScale is the sigma for freshly rolled weight vectors
// (Xavier-style for the input fan-in).
var InitWeightScale = float32(math.Sqrt(2.0 / float64(NumInputs)))

// DecisionNet is a two-layer feedforward network over a creature's
// genome weight slice. It holds no mutable state: identical weights and
// inputs always produce identical outputs.
type DecisionNet struct {
	W1 [NumHidden][NumInputs]float32
	B1 [NumHidden]float32
	W2 [NumOutputs][NumHidden]float32
	B2 [NumOutputs]float32
}

// FromWeights unpacks a flat weight vector into a network. The slice
// must be exactly WeightCount long; anything else is a programming
// error upstream (genomes are fixed-length by construction).
func FromWeights(w []float32) *DecisionNet {
	nn := &DecisionNet{}
	k := 0
	for i := range nn.W1 {
		for j := range nn.W1[i] {
			nn.W1[i][j] = w[k]
			k++
		}
	}
	for i := range nn.B1 {
		nn.B1[i] = w[k]
		k++
	}
	for i := range nn.W2 {
		for j := range nn.W2[i] {
			nn.W2[i][j] = w[k]
			k++
		}
	}
	for i := range nn.B2 {
		nn.B2[i] = w[k]
		k++
	}
	return nn
}

// Forward computes the steering decision.
// Returns: turn in [-pi, pi], speed factor in [0, 1].
func (nn *DecisionNet) Forward(inputs *[NumInputs]float32) (turn, speed float32) {
	var hidden [NumHidden]float32
	for i := 0; i < NumHidden; i++ {
		sum := nn.B1[i]
		for j := 0; j < NumInputs; j++ {
			sum += nn.W1[i][j] * inputs[j]
		}
		hidden[i] = tanh(sum)
	}

	var outputs [NumOutputs]float32
	for i := 0; i < NumOutputs; i++ {
		sum := nn.B2[i]
		for j := 0; j < NumHidden; j++ {
			sum += nn.W2[i][j] * hidden[j]
		}
		outputs[i] = sum
	}

	turn = tanh(outputs[0]) * math.Pi
	speed = saturate01(outputs[1]*0.5 + 0.5)
	return turn, speed
}

// saturate01 clamps x to [0, 1].
func saturate01(x float32) float32 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return x
}

// tanh uses a fast rational approximation avoiding float64 conversion.
// (|x|>4 branches are rarely taken, good for branch prediction)
func tanh(x float32) float32 {
	if x > 4 {
		return 1
	}
	if x < -4 {
		return -1
	}
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}
