package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"genesis.dev/genesis/consensus"
)

type Request struct {
	Op string `json:"op"`

	Timestamp string `json:"timestamp,omitempty"`
	PubkeyHex string `json:"pubkey,omitempty"`
	Value     int64  `json:"value,omitempty"`
	TxHex     string `json:"tx_hex,omitempty"`

	MerkleRootHex string `json:"merkle_root,omitempty"`
	Time          uint32 `json:"time,omitempty"`
	Bits          uint32 `json:"bits,omitempty"`
	Nonce         uint32 `json:"nonce,omitempty"`

	HeaderHex string `json:"header_hex,omitempty"`
	Algorithm string `json:"algorithm,omitempty"`
}

type Response struct {
	Ok  bool   `json:"ok"`
	Err string `json:"err,omitempty"`

	ScriptHex   string `json:"script_hex,omitempty"`
	Disasm      string `json:"disasm,omitempty"`
	TxHex       string `json:"tx_hex,omitempty"`
	TxidHex     string `json:"txid,omitempty"`
	MerkleHex   string `json:"merkle_root,omitempty"`
	Consumed    int    `json:"consumed,omitempty"`
	ScriptSig   string `json:"script_sig,omitempty"`
	ScriptPub   string `json:"script_pubkey,omitempty"`
	Value       int64  `json:"value,omitempty"`
	HeaderHex   string `json:"header_hex,omitempty"`
	BlockHash   string `json:"block_hash,omitempty"`
	TargetHex   string `json:"target,omitempty"`
	Target      string `json:"target_dec,omitempty"`
	PowHashHex  string `json:"pow_hash,omitempty"`
	GenesisHash string `json:"genesis_hash,omitempty"`
	BitsHex     string `json:"bits,omitempty"`
	Found       *bool  `json:"found,omitempty"`
}

func writeResp(w io.Writer, resp Response) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

func writeConsensusErr(w io.Writer, err error) {
	if code := consensus.CodeOf(err); code != "" {
		writeResp(w, Response{Ok: false, Err: string(code)})
		return
	}
	writeResp(w, Response{Ok: false, Err: err.Error()})
}

// displayHex renders a digest in the conventional reversed order.
func displayHex(d [32]byte) string {
	r := consensus.ReverseDigest(d)
	return hex.EncodeToString(r[:])
}

func parseDisplayHex32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil || len(b) != 32 {
		return out, errors.New("bad hash32")
	}
	copy(out[:], b)
	return consensus.ReverseDigest(out), nil
}

func parseHeader(headerHex string) ([]byte, consensus.BlockHeader, error) {
	b, err := hex.DecodeString(headerHex)
	if err != nil {
		return nil, consensus.BlockHeader{}, errors.New("bad header hex")
	}
	hdr, err := consensus.ParseBlockHeaderBytes(b)
	if err != nil {
		return nil, hdr, err
	}
	return b, hdr, nil
}

func buildTx(req Request) (*consensus.CoinbaseTx, error) {
	in, err := consensus.InputScript(req.Timestamp)
	if err != nil {
		return nil, err
	}
	pubkey, err := hex.DecodeString(req.PubkeyHex)
	if err != nil {
		return nil, errors.New("bad pubkey hex")
	}
	return consensus.NewCoinbaseTx(in, consensus.OutputScript(pubkey), req.Value), nil
}

// powDigest hashes header with the algorithm's proof-of-work function and
// returns it together with the hash the algorithm reports as the genesis hash.
func powDigest(header []byte, algName string) (genesis, pow [32]byte, err error) {
	alg, err := consensus.ParseAlgorithm(algName)
	if err != nil {
		return genesis, pow, err
	}
	hasher, err := alg.Hasher()
	if err != nil {
		return genesis, pow, err
	}
	identity, err := consensus.BlockHash(header)
	if err != nil {
		return genesis, pow, err
	}
	if pow, err = hasher.Digest(header); err != nil {
		return genesis, pow, err
	}
	return alg.GenesisHash(identity, pow), pow, nil
}

func run(r io.Reader, w io.Writer) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		writeResp(w, Response{Ok: false, Err: fmt.Sprintf("bad request: %v", err)})
		return
	}

	switch req.Op {
	case "input_script":
		s, err := consensus.InputScript(req.Timestamp)
		if err != nil {
			writeConsensusErr(w, err)
			return
		}
		writeResp(w, Response{Ok: true, ScriptHex: hex.EncodeToString(s), Disasm: consensus.DisasmScript(s)})

	case "output_script":
		pubkey, err := hex.DecodeString(req.PubkeyHex)
		if err != nil {
			writeResp(w, Response{Ok: false, Err: "bad pubkey hex"})
			return
		}
		s := consensus.OutputScript(pubkey)
		writeResp(w, Response{Ok: true, ScriptHex: hex.EncodeToString(s), Disasm: consensus.DisasmScript(s)})

	case "coinbase_tx":
		tx, err := buildTx(req)
		if err != nil {
			writeConsensusErr(w, err)
			return
		}
		b, err := consensus.MarshalCoinbaseTx(tx)
		if err != nil {
			writeConsensusErr(w, err)
			return
		}
		txid := consensus.TxID(b)
		writeResp(w, Response{
			Ok:        true,
			TxHex:     hex.EncodeToString(b),
			TxidHex:   displayHex(txid),
			MerkleHex: displayHex(txid),
		})

	case "parse_tx":
		b, err := hex.DecodeString(req.TxHex)
		if err != nil {
			writeResp(w, Response{Ok: false, Err: "bad hex"})
			return
		}
		tx, n, err := consensus.ParseCoinbaseTx(b)
		if err != nil {
			writeConsensusErr(w, err)
			return
		}
		writeResp(w, Response{
			Ok:        true,
			TxidHex:   displayHex(consensus.TxID(b[:n])),
			Consumed:  n,
			ScriptSig: hex.EncodeToString(tx.ScriptSig),
			ScriptPub: hex.EncodeToString(tx.ScriptPubKey),
			Value:     tx.Value,
		})

	case "header":
		root, err := parseDisplayHex32(req.MerkleRootHex)
		if err != nil {
			writeResp(w, Response{Ok: false, Err: "bad merkle_root"})
			return
		}
		h := consensus.BlockHeaderBytes(consensus.NewGenesisHeader(root, req.Time, req.Bits, req.Nonce))
		hash, err := consensus.BlockHash(h)
		if err != nil {
			writeConsensusErr(w, err)
			return
		}
		writeResp(w, Response{Ok: true, HeaderHex: hex.EncodeToString(h), BlockHash: displayHex(hash)})

	case "target":
		t := consensus.CompactToTarget(req.Bits)
		tb, ok := consensus.TargetBytes(t)
		if !ok {
			writeResp(w, Response{Ok: false, Err: "target exceeds 256 bits"})
			return
		}
		writeResp(w, Response{Ok: true, TargetHex: hex.EncodeToString(tb[:]), Target: t.String()})

	case "pow_hash", "pow_check":
		h, hdr, err := parseHeader(req.HeaderHex)
		if err != nil {
			writeConsensusErr(w, err)
			return
		}
		alg := req.Algorithm
		if alg == "" {
			alg = consensus.AlgSHA256.String()
		}
		genesis, pow, err := powDigest(h, alg)
		if err != nil {
			writeConsensusErr(w, err)
			return
		}
		resp := Response{Ok: true, PowHashHex: displayHex(pow), GenesisHash: displayHex(genesis)}
		if req.Op == "pow_check" {
			bits := req.Bits
			if bits == 0 {
				bits = hdr.Bits
			}
			found := consensus.PowCheck(pow, consensus.CompactToTarget(bits))
			resp.Found = &found
			resp.BitsHex = fmt.Sprintf("%08x", bits)
		}
		writeResp(w, resp)

	default:
		writeResp(w, Response{Ok: false, Err: "unknown op"})
	}
}
