package output

import (
	"bytes"
	"context"
	"os"
	"testing"
)

func TestPrinter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := New(&buf)
	p.Print("a")
	p.Printf("%d", 1)
	p.Println("b")
	if got := buf.String(); got != "a1b\n" {
		t.Errorf("printer output = %q, want %q", got, "a1b\n")
	}
	if p.Writer() != &buf {
		t.Error("Writer() did not return the underlying writer")
	}
}

func TestWithPrinter_FromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := WithPrinter(context.Background(), &buf)
	p := FromContext(ctx)
	p.Println("hello")
	if got := buf.String(); got != "hello\n" {
		t.Errorf("output = %q, want %q", got, "hello\n")
	}
}

func TestFromContext_Fallback(t *testing.T) {
	t.Parallel()

	p := FromContext(context.Background())
	if p.Writer() != os.Stdout {
		t.Error("fallback printer should write to os.Stdout")
	}
}
