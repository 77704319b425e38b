// hmm.go — Self-learning 3-state Hidden Markov Model over event intervals.
// States are Normal, Burst and Silent; observations are inter-event gaps in
// hours modeled as exponential with a per-state rate. Parameters are learned
// per invocation with Baum-Welch (log-space forward-backward, logsumexp),
// then a short Viterbi pass over the most recent intervals establishes a
// baseline before the new interval is classified.
package stats

import "math"

// Hidden states.
const (
	StateNormal = 0
	StateBurst  = 1
	StateSilent = 2
	numStates   = 3
)

// StateName returns a readable label for a state index.
func StateName(state int) string {
	switch state {
	case StateNormal:
		return "Normal"
	case StateBurst:
		return "Burst"
	case StateSilent:
		return "Silent"
	default:
		return "Unknown"
	}
}

const (
	hmmMaxIterations     = 10
	hmmConvergenceTol    = 1e-4
	hmmBaselineWindow    = 20
	defaultMeanIntervalH = 24.0
	epsilon              = 1e-9
)

// HMMModel learns interval dynamics and classifies the newest interval.
type HMMModel struct {
	MaxIterations  int
	ConvergenceTol float64
	BaselineWindow int
}

// NewHMMModel returns an HMMModel with the standard training bounds.
func NewHMMModel() *HMMModel {
	return &HMMModel{
		MaxIterations:  hmmMaxIterations,
		ConvergenceTol: hmmConvergenceTol,
		BaselineWindow: hmmBaselineWindow,
	}
}

// hmmParams holds the learned model: row-stochastic transitions
// (from-state rows) and per-state exponential rates.
type hmmParams struct {
	transitions [numStates][numStates]float64
	lambdas     [numStates]float64
}

// PredictFinalState learns parameters from the historical intervals, walks a
// Viterbi baseline over the last BaselineWindow of them, then classifies
// newInterval. Returns the most likely final state.
func (m *HMMModel) PredictFinalState(intervals []float64, newInterval float64) int {
	params := m.learn(intervals)

	state := newViterbiState()
	start := len(intervals) - m.BaselineWindow
	if start < 0 {
		start = 0
	}
	for _, x := range intervals[start:] {
		state, _ = viterbiStep(x, state, params)
	}
	_, final := viterbiStep(newInterval, state, params)
	return final
}

// initialParams seeds training: a sticky Normal state, a fast Burst state at
// 5% of the observed mean gap and a slow Silent state at 10x.
func initialParams(intervals []float64) hmmParams {
	p := hmmParams{
		transitions: [numStates][numStates]float64{
			{0.90, 0.08, 0.02}, // Normal -> (Normal, Burst, Silent)
			{0.20, 0.79, 0.01}, // Burst  -> (Normal, Burst, Silent)
			{0.30, 0.01, 0.69}, // Silent -> (Normal, Burst, Silent)
		},
	}
	meanNormal := defaultMeanIntervalH
	if len(intervals) > 0 {
		meanNormal = Mean(intervals)
	}
	p.lambdas[StateNormal] = 1.0 / nonZero(meanNormal)
	p.lambdas[StateBurst] = 1.0 / nonZero(meanNormal*0.05)
	p.lambdas[StateSilent] = 1.0 / nonZero(meanNormal*10.0)
	return p
}

func nonZero(x float64) float64 {
	if x == 0 {
		return epsilon
	}
	return x
}

// exponentialLogProb is the emission log-probability of interval x under
// rate lambda: log(lambda) - lambda*x.
func exponentialLogProb(x, lambda float64) float64 {
	if lambda <= 0 {
		lambda = epsilon
	}
	return math.Log(lambda) - lambda*x
}

func logTransition(p float64) float64 {
	if p < epsilon {
		p = epsilon
	}
	return math.Log(p)
}

// learn runs Baum-Welch for up to MaxIterations, stopping once the L1 change
// in parameters drops below ConvergenceTol.
func (m *HMMModel) learn(intervals []float64) hmmParams {
	params := initialParams(intervals)
	n := len(intervals)
	if n == 0 {
		return params
	}

	for iter := 0; iter < m.MaxIterations; iter++ {
		obs := observationLogProbs(intervals, params.lambdas)
		alpha, beta := forwardBackward(params.transitions, obs)
		next := reestimate(intervals, params, alpha, beta, obs)

		change := 0.0
		for i := 0; i < numStates; i++ {
			for j := 0; j < numStates; j++ {
				change += math.Abs(next.transitions[i][j] - params.transitions[i][j])
			}
			change += math.Abs(next.lambdas[i] - params.lambdas[i])
		}
		params = next
		if change < m.ConvergenceTol {
			break
		}
	}
	return params
}

func observationLogProbs(intervals []float64, lambdas [numStates]float64) [][numStates]float64 {
	obs := make([][numStates]float64, len(intervals))
	for t, x := range intervals {
		for s := 0; s < numStates; s++ {
			obs[t][s] = exponentialLogProb(x, lambdas[s])
		}
	}
	return obs
}

// forwardBackward computes log-space alpha and beta with a uniform initial
// distribution.
func forwardBackward(transitions [numStates][numStates]float64, obs [][numStates]float64) (alpha, beta [][numStates]float64) {
	n := len(obs)
	alpha = make([][numStates]float64, n)
	beta = make([][numStates]float64, n)

	logUniform := math.Log(1.0 / numStates)
	for j := 0; j < numStates; j++ {
		alpha[0][j] = logUniform + obs[0][j]
	}
	terms := make([]float64, numStates)
	for t := 1; t < n; t++ {
		for j := 0; j < numStates; j++ {
			for i := 0; i < numStates; i++ {
				terms[i] = alpha[t-1][i] + logTransition(transitions[i][j])
			}
			alpha[t][j] = obs[t][j] + logSumExp(terms)
		}
	}

	// beta[n-1] is all zeros (log 1).
	for t := n - 2; t >= 0; t-- {
		for i := 0; i < numStates; i++ {
			for j := 0; j < numStates; j++ {
				terms[j] = beta[t+1][j] + logTransition(transitions[i][j]) + obs[t+1][j]
			}
			beta[t][i] = logSumExp(terms)
		}
	}
	return alpha, beta
}

// reestimate performs the M-step: transitions from xi/gamma sums, rates from
// gamma-weighted interval sums.
func reestimate(intervals []float64, params hmmParams, alpha, beta [][numStates]float64, obs [][numStates]float64) hmmParams {
	n := len(intervals)

	denomTerms := make([]float64, numStates)
	copy(denomTerms, alpha[n-1][:])
	logEvidence := logSumExp(denomTerms)

	gamma := make([][numStates]float64, n)
	for t := 0; t < n; t++ {
		for i := 0; i < numStates; i++ {
			gamma[t][i] = math.Exp(alpha[t][i] + beta[t][i] - logEvidence)
		}
	}

	var xiSum [numStates][numStates]float64
	for t := 0; t < n-1; t++ {
		for i := 0; i < numStates; i++ {
			for j := 0; j < numStates; j++ {
				logXi := alpha[t][i] + logTransition(params.transitions[i][j]) + obs[t+1][j] + beta[t+1][j] - logEvidence
				xiSum[i][j] += math.Exp(logXi)
			}
		}
	}

	var next hmmParams
	for i := 0; i < numStates; i++ {
		gammaSum := 0.0
		for t := 0; t < n-1; t++ {
			gammaSum += gamma[t][i]
		}
		if gammaSum == 0 {
			gammaSum = 1
		}
		for j := 0; j < numStates; j++ {
			next.transitions[i][j] = xiSum[i][j] / gammaSum
		}
	}
	for i := 0; i < numStates; i++ {
		gammaTotal := 0.0
		weighted := 0.0
		for t := 0; t < n; t++ {
			gammaTotal += gamma[t][i]
			weighted += gamma[t][i] * intervals[t]
		}
		next.lambdas[i] = gammaTotal / nonZero(weighted)
	}
	return next
}

// viterbiState holds per-state log-probabilities of the best path so far.
type viterbiState [numStates]float64

func newViterbiState() viterbiState {
	lp := math.Log(1.0 / numStates)
	return viterbiState{lp, lp, lp}
}

// viterbiStep advances one observation and returns the new state vector and
// the most likely current state.
func viterbiStep(x float64, prev viterbiState, params hmmParams) (viterbiState, int) {
	var next viterbiState
	for dest := 0; dest < numStates; dest++ {
		maxPath := math.Inf(-1)
		for src := 0; src < numStates; src++ {
			if v := prev[src] + logTransition(params.transitions[src][dest]); v > maxPath {
				maxPath = v
			}
		}
		next[dest] = maxPath + exponentialLogProb(x, params.lambdas[dest])
	}
	best := StateNormal
	for s := StateBurst; s < numStates; s++ {
		if next[s] > next[best] {
			best = s
		}
	}
	return next, best
}
