package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "vibe6502.Debugger"

// DebuggerServer is the server API for the Debugger service.
type DebuggerServer interface {
	// Step executes one instruction and returns the resulting CPUState.
	Step(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Pause(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Resume(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Reset(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	GetCPUState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// ReadMemoryBlock takes a MemoryRequest.
	ReadMemoryBlock(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
	// WriteMemory takes a WriteRequest.
	WriteMemory(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	// Disassemble takes a MemoryRequest whose size is an instruction count.
	Disassemble(context.Context, *structpb.Struct) (*structpb.ListValue, error)
	SetBreakpoint(context.Context, *wrapperspb.UInt32Value) (*emptypb.Empty, error)
	// ClearBreakpoint reports whether a breakpoint was removed.
	ClearBreakpoint(context.Context, *wrapperspb.UInt32Value) (*wrapperspb.BoolValue, error)
	// SaveState and LoadState take a file name on the server's filesystem.
	SaveState(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	LoadState(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
}

// UnimplementedDebuggerServer can be embedded to have forward compatible
// implementations.
type UnimplementedDebuggerServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedDebuggerServer) Step(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, unimplemented("Step")
}
func (UnimplementedDebuggerServer) Pause(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, unimplemented("Pause")
}
func (UnimplementedDebuggerServer) Resume(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, unimplemented("Resume")
}
func (UnimplementedDebuggerServer) Reset(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, unimplemented("Reset")
}
func (UnimplementedDebuggerServer) GetCPUState(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, unimplemented("GetCPUState")
}
func (UnimplementedDebuggerServer) ReadMemoryBlock(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error) {
	return nil, unimplemented("ReadMemoryBlock")
}
func (UnimplementedDebuggerServer) WriteMemory(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, unimplemented("WriteMemory")
}
func (UnimplementedDebuggerServer) Disassemble(context.Context, *structpb.Struct) (*structpb.ListValue, error) {
	return nil, unimplemented("Disassemble")
}
func (UnimplementedDebuggerServer) SetBreakpoint(context.Context, *wrapperspb.UInt32Value) (*emptypb.Empty, error) {
	return nil, unimplemented("SetBreakpoint")
}
func (UnimplementedDebuggerServer) ClearBreakpoint(context.Context, *wrapperspb.UInt32Value) (*wrapperspb.BoolValue, error) {
	return nil, unimplemented("ClearBreakpoint")
}
func (UnimplementedDebuggerServer) SaveState(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, unimplemented("SaveState")
}
func (UnimplementedDebuggerServer) LoadState(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, unimplemented("LoadState")
}

// unary builds the method descriptor for one RPC.
func unary[Req, Resp proto.Message](name string, newReq func() Req, call func(DebuggerServer, context.Context, Req) (Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DebuggerServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DebuggerServer), ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func newEmpty() *emptypb.Empty           { return new(emptypb.Empty) }
func newStruct() *structpb.Struct        { return new(structpb.Struct) }
func newUInt32() *wrapperspb.UInt32Value { return new(wrapperspb.UInt32Value) }
func newString() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }

// ServiceDesc is the grpc.ServiceDesc for the Debugger service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DebuggerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Step", newEmpty, DebuggerServer.Step),
		unary("Pause", newEmpty, DebuggerServer.Pause),
		unary("Resume", newEmpty, DebuggerServer.Resume),
		unary("Reset", newEmpty, DebuggerServer.Reset),
		unary("GetCPUState", newEmpty, DebuggerServer.GetCPUState),
		unary("ReadMemoryBlock", newStruct, DebuggerServer.ReadMemoryBlock),
		unary("WriteMemory", newStruct, DebuggerServer.WriteMemory),
		unary("Disassemble", newStruct, DebuggerServer.Disassemble),
		unary("SetBreakpoint", newUInt32, DebuggerServer.SetBreakpoint),
		unary("ClearBreakpoint", newUInt32, DebuggerServer.ClearBreakpoint),
		unary("SaveState", newString, DebuggerServer.SaveState),
		unary("LoadState", newString, DebuggerServer.LoadState),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterDebuggerServer registers srv with s.
func RegisterDebuggerServer(s grpc.ServiceRegistrar, srv DebuggerServer) {
	s.RegisterService(&ServiceDesc, srv)
}
