// Package symbols turns parsed functions into structural digests and
// classifies how two snapshots of a file differ function by function.
package symbols

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"
)

// Digest is the structural identity of one function.
type Digest [sha256.Size]byte

// String returns the short form used in logs and reports.
func (d Digest) String() string {
	return d.Hex()[:16]
}

// Hex returns the full hex encoding.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// Hash computes the digest of node's canonical form.
func Hash(node *sitter.Node, source []byte) Digest {
	h := sha256.New()
	// Writes to a hash.Hash never return an error.
	_ = WriteCanonical(hashWriter{h}, node, source)

	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// WriteCanonical writes node as an S-expression of node kinds, field names
// and leaf token text. Extras (comments, line continuations) are dropped and
// no positional data is written, so formatting never reaches the output.
func WriteCanonical(w io.StringWriter, node *sitter.Node, source []byte) error {
	if node == nil {
		return nil
	}
	return writeNode(w, node, "", source)
}

func writeNode(w io.StringWriter, node *sitter.Node, field string, source []byte) error {
	if _, err := w.WriteString("("); err != nil {
		return err
	}
	if field != "" {
		if _, err := w.WriteString(field + ":"); err != nil {
			return err
		}
	}
	if _, err := w.WriteString(node.Type()); err != nil {
		return err
	}

	count := int(node.ChildCount())
	if count == 0 {
		if _, err := w.WriteString(" " + strconv.Quote(node.Content(source))); err != nil {
			return err
		}
	}
	for i := 0; i < count; i++ {
		child := node.Child(i)
		if child == nil || isTrivia(child) {
			continue
		}
		if _, err := w.WriteString(" "); err != nil {
			return err
		}
		if err := writeNode(w, child, node.FieldNameForChild(i), source); err != nil {
			return err
		}
	}

	_, err := w.WriteString(")")
	return err
}

func isTrivia(node *sitter.Node) bool {
	if node.IsExtra() {
		return true
	}
	switch node.Type() {
	case "comment", "line_continuation":
		return true
	}
	return false
}

type hashWriter struct {
	h hash.Hash
}

func (w hashWriter) WriteString(v string) (int, error) {
	return io.WriteString(w.h, v)
}
