package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client is a typed client for the Debugger service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out proto.Message, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *Client) state(ctx context.Context, method string, opts ...grpc.CallOption) (CPUState, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, method, &emptypb.Empty{}, out, opts...); err != nil {
		return CPUState{}, err
	}
	return CPUStateFromStruct(out)
}

// Step executes one instruction and returns the new state.
func (c *Client) Step(ctx context.Context, opts ...grpc.CallOption) (CPUState, error) {
	return c.state(ctx, "Step", opts...)
}

// GetCPUState returns the current register values.
func (c *Client) GetCPUState(ctx context.Context, opts ...grpc.CallOption) (CPUState, error) {
	return c.state(ctx, "GetCPUState", opts...)
}

func (c *Client) Pause(ctx context.Context, opts ...grpc.CallOption) error {
	return c.invoke(ctx, "Pause", &emptypb.Empty{}, new(emptypb.Empty), opts...)
}

func (c *Client) Resume(ctx context.Context, opts ...grpc.CallOption) error {
	return c.invoke(ctx, "Resume", &emptypb.Empty{}, new(emptypb.Empty), opts...)
}

func (c *Client) Reset(ctx context.Context, opts ...grpc.CallOption) error {
	return c.invoke(ctx, "Reset", &emptypb.Empty{}, new(emptypb.Empty), opts...)
}

// ReadMemoryBlock returns size bytes starting at addr.
func (c *Client) ReadMemoryBlock(ctx context.Context, addr uint16, size int, opts ...grpc.CallOption) ([]byte, error) {
	out := new(wrapperspb.BytesValue)
	req := MemoryRequest{Address: addr, Size: size}.Struct()
	if err := c.invoke(ctx, "ReadMemoryBlock", req, out, opts...); err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}

// WriteMemory stores data starting at addr.
func (c *Client) WriteMemory(ctx context.Context, addr uint16, data []byte, opts ...grpc.CallOption) error {
	req := WriteRequest{Address: addr, Data: data}.Struct()
	return c.invoke(ctx, "WriteMemory", req, new(emptypb.Empty), opts...)
}

// Disassemble decodes count instructions starting at addr.
func (c *Client) Disassemble(ctx context.Context, addr uint16, count int, opts ...grpc.CallOption) ([]ListingLine, error) {
	out := new(structpb.ListValue)
	req := MemoryRequest{Address: addr, Size: count}.Struct()
	if err := c.invoke(ctx, "Disassemble", req, out, opts...); err != nil {
		return nil, err
	}
	return ListingLines(out)
}

func (c *Client) SetBreakpoint(ctx context.Context, addr uint16, opts ...grpc.CallOption) error {
	return c.invoke(ctx, "SetBreakpoint", wrapperspb.UInt32(uint32(addr)), new(emptypb.Empty), opts...)
}

// ClearBreakpoint reports whether a breakpoint was set at addr.
func (c *Client) ClearBreakpoint(ctx context.Context, addr uint16, opts ...grpc.CallOption) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.invoke(ctx, "ClearBreakpoint", wrapperspb.UInt32(uint32(addr)), out, opts...); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (c *Client) SaveState(ctx context.Context, filename string, opts ...grpc.CallOption) error {
	return c.invoke(ctx, "SaveState", wrapperspb.String(filename), new(emptypb.Empty), opts...)
}

func (c *Client) LoadState(ctx context.Context, filename string, opts ...grpc.CallOption) error {
	return c.invoke(ctx, "LoadState", wrapperspb.String(filename), new(emptypb.Empty), opts...)
}
