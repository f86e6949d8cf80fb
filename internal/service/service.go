// Package service exposes the checker over gRPC. The schema is parsed from
// an embedded .proto file and messages are handled dynamically.
package service

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"net"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/funvibe/pyhint/internal/checker"
	"github.com/funvibe/pyhint/internal/config"
	"github.com/funvibe/pyhint/internal/diagnostics"
)

//go:embed hint.proto
var protoSource string

const (
	protoFile   = "pyhint/v1/hint.proto"
	ServiceName = "pyhint.v1.HintService"
)

var tracer = otel.Tracer("pyhint/service")

type handlerFunc func(ctx context.Context, req *dynamic.Message) (*dynamic.Message, error)

// Server implements HintService. Every request runs in a fresh checker
// session, so no inference state is shared between requests.
type Server struct {
	cfg *config.Config
	sd  *desc.ServiceDescriptor
}

// New parses the embedded schema.
func New(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	sd, err := loadService()
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, sd: sd}, nil
}

func loadService() (*desc.ServiceDescriptor, error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{protoFile: protoSource}),
	}
	fds, err := parser.ParseFiles(protoFile)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", protoFile, err)
	}
	for _, fd := range fds {
		if sd := fd.FindService(ServiceName); sd != nil {
			return sd, nil
		}
	}
	return nil, fmt.Errorf("service %s not found in %s", ServiceName, protoFile)
}

// Descriptor returns the service schema.
func (s *Server) Descriptor() *desc.ServiceDescriptor { return s.sd }

// NewMessage returns an empty input message of method.
func (s *Server) NewMessage(method string) (*dynamic.Message, error) {
	md := s.sd.FindMethodByName(method)
	if md == nil {
		return nil, fmt.Errorf("method %s not found in %s", method, ServiceName)
	}
	return dynamic.NewMessage(md.GetInputType()), nil
}

func (s *Server) handlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		"Analyze":         s.Analyze,
		"InferExpression": s.InferExpression,
	}
}

// Register adds the service to g.
func (s *Server) Register(g *grpc.Server) {
	sd := &grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*interface{})(nil),
		Methods:     []grpc.MethodDesc{},
		Streams:     []grpc.StreamDesc{},
		Metadata:    s.sd.GetFile().GetName(),
	}
	handlers := s.handlers()
	for _, method := range s.sd.GetMethods() {
		if method.IsClientStreaming() || method.IsServerStreaming() {
			continue
		}
		md := method
		handler, ok := handlers[md.GetName()]
		if !ok {
			continue
		}
		fullMethod := "/" + ServiceName + "/" + md.GetName()
		sd.Methods = append(sd.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				in := dynamic.NewMessage(md.GetInputType())
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return handler(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
				return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
					return handler(ctx, req.(*dynamic.Message))
				})
			},
		})
	}
	g.RegisterService(sd, s)
}

// Analyze checks one file and returns its signatures, bindings and
// diagnostics.
func (s *Server) Analyze(ctx context.Context, req *dynamic.Message) (*dynamic.Message, error) {
	path := stringField(req, "path")
	_, span := tracer.Start(ctx, "Analyze", trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	if path == "" {
		path = "<input>"
	}
	result := checker.Run(s.cfg, stringField(req, "source"), path)
	span.SetAttributes(
		attribute.String("session", result.SessionID),
		attribute.Int("signatures", len(result.Signatures)),
		attribute.Int("bindings", len(result.Bindings)),
		attribute.Int("diagnostics", len(result.Errors)),
	)

	resp := s.output("Analyze")
	resp.SetFieldByName("session", result.SessionID)
	for _, sig := range result.Signatures {
		m := newField(resp, "signatures")
		m.SetFieldByName("name", sig.Name)
		m.SetFieldByName("line", int32(sig.Line))
		for _, p := range sig.Params {
			pm := newField(m, "params")
			pm.SetFieldByName("name", p.Name)
			addStrings(pm, "types", p.Types)
			m.AddRepeatedFieldByName("params", pm)
		}
		addStrings(m, "returns", sig.Returns)
		resp.AddRepeatedFieldByName("signatures", m)
	}
	for _, b := range result.Bindings {
		m := newField(resp, "bindings")
		m.SetFieldByName("name", b.Name)
		m.SetFieldByName("line", int32(b.Line))
		addStrings(m, "types", b.Types)
		resp.AddRepeatedFieldByName("bindings", m)
	}
	addDiagnostics(resp, result.Errors)
	return resp, nil
}

// InferExpression infers an expression in the context of a module.
func (s *Server) InferExpression(ctx context.Context, req *dynamic.Message) (*dynamic.Message, error) {
	expr := stringField(req, "expression")
	_, span := tracer.Start(ctx, "InferExpression", trace.WithAttributes(attribute.String("expression", expr)))
	defer span.End()

	path := stringField(req, "path")
	if path == "" {
		path = "<input>"
	}
	values, diags, err := checker.InferExpression(s.cfg, stringField(req, "source"), path, expr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	types := checker.Render(values)
	span.SetAttributes(attribute.StringSlice("types", types))

	resp := s.output("InferExpression")
	addStrings(resp, "types", types)
	addDiagnostics(resp, diags)
	return resp, nil
}

func (s *Server) output(method string) *dynamic.Message {
	return dynamic.NewMessage(s.sd.FindMethodByName(method).GetOutputType())
}

func newField(parent *dynamic.Message, field string) *dynamic.Message {
	fd := parent.GetMessageDescriptor().FindFieldByName(field)
	return dynamic.NewMessage(fd.GetMessageType())
}

func stringField(msg *dynamic.Message, name string) string {
	s, _ := msg.GetFieldByName(name).(string)
	return s
}

func addStrings(msg *dynamic.Message, field string, values []string) {
	for _, v := range values {
		msg.AddRepeatedFieldByName(field, v)
	}
}

func addDiagnostics(resp *dynamic.Message, diags []*diagnostics.DiagnosticError) {
	for _, d := range diags {
		m := newField(resp, "diagnostics")
		m.SetFieldByName("code", string(d.Code))
		m.SetFieldByName("severity", d.Severity.String())
		m.SetFieldByName("line", int32(d.Token.Line))
		m.SetFieldByName("column", int32(d.Token.Column))
		m.SetFieldByName("message", d.Message)
		resp.AddRepeatedFieldByName("diagnostics", m)
	}
}

// Serve listens on addr and serves until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config, addr string) error {
	srv, err := New(cfg)
	if err != nil {
		return err
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	g := grpc.NewServer()
	srv.Register(g)

	go func() {
		<-ctx.Done()
		g.GracefulStop()
	}()
	log.Printf("pyhint: serving %s on %s", ServiceName, lis.Addr())
	if err := g.Serve(lis); err != nil {
		return fmt.Errorf("serving %s: %w", addr, err)
	}
	log.Printf("pyhint: stopped")
	return nil
}
