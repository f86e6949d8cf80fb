package service

import (
	"context"
	"net"
	"testing"

	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const src = `from typing import TypeVar, List
T = TypeVar('T')
def first(xs: List[T]) -> T:
    pass
def bad() -> "List[":
    pass
n = first([1, 2])
`

func newRequest(t *testing.T, srv *Server, method string, fields map[string]string) *dynamic.Message {
	t.Helper()
	req, err := srv.NewMessage(method)
	if err != nil {
		t.Fatalf("NewMessage(%s): %v", method, err)
	}
	for k, v := range fields {
		req.SetFieldByName(k, v)
	}
	return req
}

func stringsField(msg *dynamic.Message, name string) []string {
	var out []string
	for i := 0; i < msg.FieldLength(msg.GetMessageDescriptor().FindFieldByName(name)); i++ {
		out = append(out, msg.GetRepeatedFieldByName(name, i).(string))
	}
	return out
}

func TestDescriptor(t *testing.T) {
	srv, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sd := srv.Descriptor()
	if sd.GetFullyQualifiedName() != ServiceName {
		t.Errorf("service = %s, want %s", sd.GetFullyQualifiedName(), ServiceName)
	}
	for _, m := range []string{"Analyze", "InferExpression"} {
		if sd.FindMethodByName(m) == nil {
			t.Errorf("method %s missing", m)
		}
	}
	if _, err := srv.NewMessage("Missing"); err == nil {
		t.Error("NewMessage of an unknown method should fail")
	}
}

func TestAnalyze(t *testing.T) {
	srv, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	req := newRequest(t, srv, "Analyze", map[string]string{"path": "m.py", "source": src})
	resp, err := srv.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if stringField(resp, "session") == "" {
		t.Error("session not set")
	}

	sigs := resp.GetFieldByName("signatures").([]interface{})
	if len(sigs) != 2 {
		t.Fatalf("got %d signatures, want 2", len(sigs))
	}
	first := sigs[0].(*dynamic.Message)
	if stringField(first, "name") != "first" {
		t.Errorf("signature name = %q, want first", stringField(first, "name"))
	}
	params := first.GetFieldByName("params").([]interface{})
	if got := stringsField(params[0].(*dynamic.Message), "types"); len(got) != 1 || got[0] != "list[T]" {
		t.Errorf("xs types = %v, want [list[T]]", got)
	}

	bindings := resp.GetFieldByName("bindings").([]interface{})
	var n *dynamic.Message
	for _, b := range bindings {
		if m := b.(*dynamic.Message); stringField(m, "name") == "n" {
			n = m
		}
	}
	if n == nil {
		t.Fatal("binding n missing")
	}
	if got := stringsField(n, "types"); len(got) != 1 || got[0] != "int" {
		t.Errorf("n = %v, want [int]", got)
	}
	if line := n.GetFieldByName("line").(int32); line != 7 {
		t.Errorf("n line = %d, want 7", line)
	}

	diags := resp.GetFieldByName("diagnostics").([]interface{})
	found := false
	for _, d := range diags {
		if stringField(d.(*dynamic.Message), "code") == "A001" {
			found = true
		}
	}
	if !found {
		t.Error("missing A001 diagnostic for the broken forward reference")
	}
}

func TestInferExpressionOverGRPC(t *testing.T) {
	srv, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lis := bufconn.Listen(1 << 20)
	g := grpc.NewServer()
	srv.Register(g)
	go g.Serve(lis)
	defer g.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer conn.Close()

	method := "/" + ServiceName + "/InferExpression"
	md := srv.Descriptor().FindMethodByName("InferExpression")

	req := newRequest(t, srv, "InferExpression", map[string]string{"source": src, "expression": "first(['a'])"})
	resp := dynamic.NewMessage(md.GetOutputType())
	if err := conn.Invoke(context.Background(), method, req, resp); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got := stringsField(resp, "types"); len(got) != 1 || got[0] != "str" {
		t.Errorf("types = %v, want [str]", got)
	}

	bad := newRequest(t, srv, "InferExpression", map[string]string{"source": src, "expression": "first("})
	err = conn.Invoke(context.Background(), method, bad, dynamic.NewMessage(md.GetOutputType()))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("invalid expression: code = %v, want InvalidArgument", status.Code(err))
	}
}
