package chain

import "golang.org/x/crypto/sha3"

func sha3_256(b []byte) Hash {
	h := sha3.New256()
	_, _ = h.Write(b)
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// TxHash hashes the raw transaction; witnesses are not committed.
func TxHash(tx Tx) (Hash, error) {
	raw, err := MarshalRawTx(tx)
	if err != nil {
		return Hash{}, err
	}
	return sha3_256(raw), nil
}

// DataHash is the code hash of a script binary matched by data hash types.
func DataHash(data []byte) Hash { return sha3_256(data) }

func (s Script) Hash() (Hash, error) {
	b, err := MarshalScript(s)
	if err != nil {
		return Hash{}, err
	}
	return sha3_256(b), nil
}
