package diagnostics

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// SolverOptions is the key subset of solver configuration spec.md §4.7
// keeps in plaintext alongside the fingerprint for readability.
type SolverOptions struct {
	LinearSolver  string  `json:"linear_solver"`
	Tol           float64 `json:"tol"`
	ConstrViolTol float64 `json:"constr_viol_tol"`
	MuStrategy    string  `json:"mu_strategy"`
	MaxIter       int     `json:"max_iter"`
}

// OptionFingerprint returns the first 16 hex characters of the SHA-256
// digest of opts plus any extra key/value pairs, sorted by key so the
// fingerprint is stable regardless of map iteration order.
func OptionFingerprint(opts SolverOptions, extra map[string]any) string {
	payload := map[string]any{
		"linear_solver":   opts.LinearSolver,
		"tol":             opts.Tol,
		"constr_viol_tol": opts.ConstrViolTol,
		"mu_strategy":     opts.MuStrategy,
		"max_iter":        opts.MaxIter,
	}
	for k, v := range extra {
		payload[k] = v
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]byte, 0, 256)
	for _, k := range keys {
		enc, _ := json.Marshal(payload[k])
		ordered = append(ordered, []byte(k)...)
		ordered = append(ordered, ':')
		ordered = append(ordered, enc...)
		ordered = append(ordered, ';')
	}

	sum := sha256.Sum256(ordered)
	return hex.EncodeToString(sum[:])[:16]
}

// HashInputs fingerprints a scenario+mesh configuration the same way, for
// the benchmark record's hash.inputs field and the P9 reproducibility
// property's dedup key.
func HashInputs(v any) (string, error) {
	enc, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(enc)
	return hex.EncodeToString(sum[:])[:16], nil
}
