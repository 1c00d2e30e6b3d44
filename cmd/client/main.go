package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/meadori/vibe6502/api"
	"github.com/meadori/vibe6502/memory"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// chunk is the number of bytes sent per WriteMemory call.
const chunk = 4096

// upload writes data to a running emulator starting at addr.
func upload(ctx context.Context, client *api.Client, addr uint16, data []byte) error {
	for off := 0; off < len(data); off += chunk {
		end := min(off+chunk, len(data))
		if err := client.WriteMemory(ctx, addr+uint16(off), data[off:end]); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	addr := flag.String("addr", "localhost:50051", "address of the emulator's gRPC server")
	load := flag.String("load", strconv.FormatUint(uint64(memory.ProgramAddress), 16), "hex load address")
	reset := flag.Bool("reset", true, "reset the CPU after uploading")
	resume := flag.Bool("run", false, "resume execution after uploading")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("Please provide a program image: client [flags] <file.bin>")
	}

	loadAddr, err := strconv.ParseUint(strings.TrimPrefix(*load, "0x"), 16, 16)
	if err != nil {
		log.Fatalf("Invalid load address %q: %v", *load, err)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read program: %v", err)
	}
	if len(data) > memory.Size {
		log.Fatalf("Program is %d bytes, larger than the address space", len(data))
	}

	log.Printf("Connecting to emulator on %s...", *addr)
	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	client := api.NewClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.Pause(ctx); err != nil {
		log.Fatalf("failed to pause: %v", err)
	}
	if err := upload(ctx, client, uint16(loadAddr), data); err != nil {
		log.Fatalf("failed to upload: %v", err)
	}
	log.Printf("Uploaded %d bytes at %04X", len(data), loadAddr)

	if *reset {
		if err := client.Reset(ctx); err != nil {
			log.Fatalf("failed to reset: %v", err)
		}
	}
	st, err := client.GetCPUState(ctx)
	if err != nil {
		log.Fatalf("failed to read state: %v", err)
	}
	log.Println(st)

	if *resume {
		if err := client.Resume(ctx); err != nil {
			log.Fatalf("failed to resume: %v", err)
		}
		log.Println("Emulator running.")
	}
}
