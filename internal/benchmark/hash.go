package benchmark

import "github.com/lyoptim/primarydry/internal/diagnostics"

// HashInputs is schema.py's hash_inputs: a stable SHA-256[:16] over the
// varied grid parameters, order-independent because Go's json.Marshal
// sorts map keys before encoding. It delegates to diagnostics.HashInputs
// so the two packages never compute a fingerprint two different ways.
func HashInputs(grid map[string]GridParam) (string, error) {
	return diagnostics.HashInputs(grid)
}

// HashRecord is schema.py's hash_record: a stable SHA-256[:16] over the
// whole record excluding the Hash field itself, so the hash is computed
// against a version of the record that does not reference its own value.
func HashRecord(rec Record) (string, error) {
	shadow := rec
	shadow.Hash = Hash{}
	return diagnostics.HashInputs(shadow)
}

// Finalize fills in rec.Hash from rec's current grid and body, mirroring
// schema.py's serialize() filling in hash.inputs/hash.record just before
// a record is written out.
func Finalize(rec Record) (Record, error) {
	inputsHash, err := HashInputs(rec.Grid)
	if err != nil {
		return Record{}, err
	}
	rec.Hash.Inputs = inputsHash

	recordHash, err := HashRecord(rec)
	if err != nil {
		return Record{}, err
	}
	rec.Hash.Record = recordHash
	return rec, nil
}
