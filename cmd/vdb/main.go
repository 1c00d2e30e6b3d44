package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/meadori/vibe6502/api"
	"golang.org/x/term"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const prompt = "(vdb) "

func main() {
	addr := flag.String("addr", "localhost:50051", "address of the emulator's gRPC server")
	flag.Parse()

	fmt.Println("VDB - vibe6502 DeBugger")
	fmt.Printf("Connecting to emulator on %s...\n", *addr)

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("did not connect: %v", err)
	}
	defer conn.Close()

	fmt.Println("Type 'help' for commands.")

	if term.IsTerminal(int(os.Stdin.Fd())) {
		if err := interactive(api.NewClient(conn)); err != nil {
			log.Fatalf("terminal: %v", err)
		}
		return
	}

	d := newDebugger(api.NewClient(conn), os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			break
		}
		if d.exec(scanner.Text()) {
			return
		}
	}
}

// interactive runs the REPL with line editing and history.
func interactive(client *api.Client) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, prompt)
	d := newDebugger(client, t)
	for {
		line, err := t.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if d.exec(line) {
			return nil
		}
	}
}
