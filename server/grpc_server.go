package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"sync"

	"github.com/meadori/vibe6502/api"
	"github.com/meadori/vibe6502/cpu"
	"github.com/meadori/vibe6502/disasm"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Machine defines the methods the debugger needs from the emulated system.
type Machine interface {
	Step() error
	Reset()
	SetPaused(bool)
	Paused() bool
	Halted() error
	GetCPUState() (cpu.State, uint64)
	GetMemoryBlock(addr uint16, size int) []byte
	Write(addr uint16, data byte)
	Disassemble(addr uint16, count int) []disasm.Line
	SetBreakpoint(addr uint16)
	ClearBreakpoint(addr uint16) bool
	SaveState(filename string) error
	LoadState(filename string) error
}

// maxDisassembly bounds a single Disassemble request.
const maxDisassembly = 1024

// GRPCServer exposes a Machine over the Debugger service.
type GRPCServer struct {
	api.UnimplementedDebuggerServer
	mu       sync.Mutex
	machine  Machine
	listener net.Listener
	server   *grpc.Server
}

var _ api.DebuggerServer = (*GRPCServer)(nil)

// NewGRPCServer initializes the gRPC debugger server.
func NewGRPCServer() *GRPCServer {
	return &GRPCServer{}
}

// SetMachine assigns the system the server controls.
func (s *GRPCServer) SetMachine(m Machine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine = m
}

func (s *GRPCServer) attached() (Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine == nil {
		return nil, status.Errorf(codes.FailedPrecondition, "no machine attached")
	}
	return s.machine, nil
}

func (s *GRPCServer) state(m Machine) *structpb.Struct {
	st, steps := m.GetCPUState()
	out := api.CPUState{
		A:      st.A,
		X:      st.X,
		Y:      st.Y,
		SP:     st.SP,
		P:      st.P,
		PC:     st.PC,
		Cycles: st.Cycles,
		Steps:  steps,
		Paused: m.Paused(),
	}
	if err := m.Halted(); err != nil {
		out.Halted = err.Error()
	}
	return out.Struct()
}

// Step advances the CPU by one instruction. A decode error is reported
// through the returned state, not as an RPC failure.
func (s *GRPCServer) Step(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
	m, err := s.attached()
	if err != nil {
		return nil, err
	}
	if err := m.Step(); err != nil && !errors.Is(err, cpu.ErrUnknownOpcode) {
		log.Printf("step: %v", err)
	}
	return s.state(m), nil
}

// Pause suspends the emulator loop.
func (s *GRPCServer) Pause(ctx context.Context, in *emptypb.Empty) (*emptypb.Empty, error) {
	m, err := s.attached()
	if err != nil {
		return nil, err
	}
	m.SetPaused(true)
	return &emptypb.Empty{}, nil
}

// Resume restarts the emulator loop.
func (s *GRPCServer) Resume(ctx context.Context, in *emptypb.Empty) (*emptypb.Empty, error) {
	m, err := s.attached()
	if err != nil {
		return nil, err
	}
	m.SetPaused(false)
	return &emptypb.Empty{}, nil
}

// Reset resets the CPU through the reset vector or entry point.
func (s *GRPCServer) Reset(ctx context.Context, in *emptypb.Empty) (*emptypb.Empty, error) {
	m, err := s.attached()
	if err != nil {
		return nil, err
	}
	m.Reset()
	return &emptypb.Empty{}, nil
}

// GetCPUState returns the CPU register values.
func (s *GRPCServer) GetCPUState(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
	m, err := s.attached()
	if err != nil {
		return nil, err
	}
	return s.state(m), nil
}

// ReadMemoryBlock returns a block of memory as the CPU sees it.
func (s *GRPCServer) ReadMemoryBlock(ctx context.Context, in *structpb.Struct) (*wrapperspb.BytesValue, error) {
	m, err := s.attached()
	if err != nil {
		return nil, err
	}
	req, err := api.MemoryRequestFromStruct(in)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	return wrapperspb.Bytes(m.GetMemoryBlock(req.Address, req.Size)), nil
}

// WriteMemory stores bytes through the bus, so ROM stays read-only.
func (s *GRPCServer) WriteMemory(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	m, err := s.attached()
	if err != nil {
		return nil, err
	}
	req, err := api.WriteRequestFromStruct(in)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	for i, b := range req.Data {
		m.Write(req.Address+uint16(i), b)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Disassemble(ctx context.Context, in *structpb.Struct) (*structpb.ListValue, error) {
	m, err := s.attached()
	if err != nil {
		return nil, err
	}
	req, err := api.MemoryRequestFromStruct(in)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	if req.Size > maxDisassembly {
		return nil, status.Errorf(codes.InvalidArgument, "count %d exceeds %d", req.Size, maxDisassembly)
	}
	lines := m.Disassemble(req.Address, req.Size)
	out := make([]api.ListingLine, len(lines))
	for i, l := range lines {
		out[i] = api.ListingLine{Address: l.PC, Size: l.Size(), Text: l.String()}
	}
	return api.Listing(out), nil
}

func (s *GRPCServer) SetBreakpoint(ctx context.Context, in *wrapperspb.UInt32Value) (*emptypb.Empty, error) {
	m, err := s.attached()
	if err != nil {
		return nil, err
	}
	addr, err := address(in)
	if err != nil {
		return nil, err
	}
	m.SetBreakpoint(addr)
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) ClearBreakpoint(ctx context.Context, in *wrapperspb.UInt32Value) (*wrapperspb.BoolValue, error) {
	m, err := s.attached()
	if err != nil {
		return nil, err
	}
	addr, err := address(in)
	if err != nil {
		return nil, err
	}
	return wrapperspb.Bool(m.ClearBreakpoint(addr)), nil
}

func address(in *wrapperspb.UInt32Value) (uint16, error) {
	if in.GetValue() > 0xFFFF {
		return 0, status.Errorf(codes.InvalidArgument, "address %#x out of range", in.GetValue())
	}
	return uint16(in.GetValue()), nil
}

// SaveState writes a snapshot to a file on the server.
func (s *GRPCServer) SaveState(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	m, err := s.attached()
	if err != nil {
		return nil, err
	}
	if in.GetValue() == "" {
		return nil, status.Errorf(codes.InvalidArgument, "empty file name")
	}
	if err := m.SaveState(in.GetValue()); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to save state: %v", err)
	}
	return &emptypb.Empty{}, nil
}

// LoadState commands the emulator to load a specific save state file.
func (s *GRPCServer) LoadState(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	m, err := s.attached()
	if err != nil {
		return nil, err
	}
	if err := m.LoadState(in.GetValue()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, status.Errorf(codes.NotFound, "failed to load state: %v", err)
		}
		return nil, status.Errorf(codes.FailedPrecondition, "failed to load state: %v", err)
	}
	return &emptypb.Empty{}, nil
}

// Serve registers the service and serves lis in a background goroutine.
func (s *GRPCServer) Serve(lis net.Listener) {
	s.listener = lis
	s.server = grpc.NewServer()
	api.RegisterDebuggerServer(s.server, s)

	go func() {
		if err := s.server.Serve(lis); err != nil {
			log.Printf("gRPC server error: %v", err)
		}
	}()
}

// Start begins listening for gRPC connections on the given port.
func (s *GRPCServer) Start(port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	log.Printf("gRPC server listening on %s", lis.Addr())
	s.Serve(lis)
	return nil
}

// Stop gracefully shuts down the gRPC server.
func (s *GRPCServer) Stop() {
	if s.server != nil {
		s.server.GracefulStop()
	}
}
