// Desktop launcher: spawns the backend, waits until it answers, opens a
// window on its address, and forwards shutdown to the server process.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

const readyTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	serverBin := os.Getenv("NOTEDESK_SERVER")
	if serverBin == "" {
		serverBin = "./notedesk"
	}
	url := "http://localhost:" + port

	server := exec.Command(serverBin)
	server.Stdout = os.Stdout
	server.Stderr = os.Stderr
	if err := server.Start(); err != nil {
		log.Fatalf("start server %s: %v", serverBin, err)
	}

	if err := waitReady(url, readyTimeout); err != nil {
		server.Process.Kill()
		log.Fatalf("server not ready: %v", err)
	}

	if err := openWindow(url); err != nil {
		log.Printf("open window: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() { done <- server.Wait() }()

	select {
	case <-sig:
		server.Process.Signal(os.Interrupt)
		<-done
	case err := <-done:
		if err != nil {
			log.Printf("server exited: %v", err)
		}
	}
}

func waitReady(url string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("no answer from %s within %s", url, timeout)
}

func openWindow(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
