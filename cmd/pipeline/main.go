package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/ollie/capvote/internal/logger"
	"github.com/ollie/capvote/internal/pipeline"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "capvote-pipeline",
	})
	logger.SetDefault(appLogger)

	// Parse command line flags
	filePath := flag.String("file", "", "Path to the image file to caption")
	server := flag.String("server", "http://localhost:8080", "Server origin hosting the pipeline endpoints")
	token := flag.String("token", os.Getenv("CAPVOTE_TOKEN"), "Bearer token for the pipeline API")
	contentType := flag.String("type", "", "Image content type; sniffed from the file when empty")
	timeout := flag.Duration("timeout", 2*time.Minute, "Per-request timeout")
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to read image file")
	}

	ct := *contentType
	if ct == "" {
		ct = sniffContentType(*filePath, data)
	}

	fields := logger.Fields{
		"file":         *filePath,
		"content_type": ct,
		"size":         len(data),
	}
	if width, height, ok := probeDimensions(data); ok {
		fields["width"] = width
		fields["height"] = height
	}
	appLogger.WithFields(fields).Info("Starting caption run")

	client := pipeline.New(&pipeline.Config{
		BaseURL: *server,
		Token:   *token,
		Timeout: *timeout,
		OnProgress: func(step, total int, message string) {
			fmt.Println(message)
		},
	})

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	result, err := client.Run(ctx, data, ct)
	if err != nil {
		appLogger.WithError(err).Fatal("Caption run failed")
	}

	appLogger.WithFields(logger.Fields{
		"image_id": result.ImageID,
		"cdn_url":  result.CDNURL,
		"captions": len(result.Captions),
	}).Info("Caption run completed")

	if len(result.Captions) == 0 {
		// Nothing recognizable in the payload; show it verbatim instead.
		raw, _ := json.MarshalIndent(result.Payload, "", "  ")
		fmt.Println(string(raw))
		return
	}
	for _, caption := range result.Captions {
		fmt.Println("- " + caption)
	}
}

// sniffContentType detects the image type from the file bytes, falling back
// to the extension for formats http.DetectContentType doesn't know (heic).
func sniffContentType(path string, data []byte) string {
	ct := http.DetectContentType(data)
	if strings.HasPrefix(ct, "image/") {
		return ct
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".heic":
		return "image/heic"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return ct
}

// probeDimensions decodes just the image header. Best effort: formats without
// a registered decoder report no dimensions.
func probeDimensions(data []byte) (width, height int, ok bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}
