package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/neekrasov/flatestream/internal/config"
	"github.com/neekrasov/flatestream/pkg/deflate"
	"github.com/neekrasov/flatestream/pkg/logger"
)

const compressedExt = ".fz"

var (
	version   = "dev"
	buildTime = "unknown"
	gitHash   = "unset"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flatestream",
		Short: "Streaming DEFLATE compression tool",
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("flatestream version %s\nbuild time: %s\nhash: %s\n",
				version, buildTime, gitHash)
		},
	})

	compressCmd := &cobra.Command{
		Use:   "compress [files...]",
		Short: "Compress files, or stdin to stdout when no files are given",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(cmd)
			if err := runCompress(cfg, args); err != nil {
				logger.Fatal("compress failed", zap.Error(err))
			}
		},
	}

	decompressCmd := &cobra.Command{
		Use:   "decompress [files...]",
		Short: "Decompress files, or stdin to stdout when no files are given",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(cmd)
			if err := runDecompress(cfg, args); err != nil {
				logger.Fatal("decompress failed", zap.Error(err))
			}
		},
	}

	for _, cmd := range []*cobra.Command{compressCmd, decompressCmd} {
		cmd.Flags().StringP("config", "c", "flatestream.yml", "Path to config file")
		cmd.Flags().IntP("level", "l", deflate.DefaultCompression, "Compression level (-1..9)")
		rootCmd.AddCommand(cmd)
	}

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(cmd *cobra.Command) config.Config {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.GetConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Compression == nil {
		cfg.Compression = &config.CompressionConfig{Level: deflate.DefaultCompression}
	}
	if cmd.Flags().Changed("level") {
		cfg.Compression.Level, _ = cmd.Flags().GetInt("level")
	}

	if cfg.Logging != nil {
		logger.InitLogger(cfg.Logging.Level, cfg.Logging.Output)
	} else {
		logger.InitLogger("info", "")
	}

	return cfg
}

func runCompress(cfg config.Config, files []string) error {
	if len(files) == 0 {
		cr, err := deflate.NewCompressReader(os.Stdin, cfg.Compression.Level,
			deflate.WithBufferSize(cfg.Compression.BufferSize))
		if err != nil {
			return err
		}

		if _, err := io.Copy(os.Stdout, cr); err != nil {
			return err
		}
		logger.Info("compressed stdin",
			zap.Uint64("in", cr.TotalIn()), zap.Uint64("out", cr.TotalOut()))

		return nil
	}

	var g errgroup.Group
	for _, path := range files {
		path := path
		g.Go(func() error {
			return compressFile(path, cfg.Compression)
		})
	}

	return g.Wait()
}

func compressFile(path string, cfg *config.CompressionConfig) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()

	out, err := os.Create(path + compressedExt)
	if err != nil {
		return fmt.Errorf("create %s: %w", path+compressedExt, err)
	}
	defer out.Close()

	w, err := deflate.NewWriter(out, cfg.Level, deflate.WithScratchSize(cfg.ScratchSize))
	if err != nil {
		return err
	}

	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("compress %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish %s: %w", path, err)
	}

	logger.Info("compressed file", zap.String("path", path),
		zap.Uint64("in", w.TotalIn()), zap.Uint64("out", w.TotalOut()))

	return out.Close()
}

func runDecompress(cfg config.Config, files []string) error {
	if len(files) == 0 {
		r := deflate.NewReader(os.Stdin, deflate.WithBufferSize(cfg.Compression.BufferSize))
		defer r.Close()

		if _, err := io.Copy(os.Stdout, r); err != nil {
			return err
		}
		logger.Info("decompressed stdin",
			zap.Uint64("in", r.TotalIn()), zap.Uint64("out", r.TotalOut()))

		return nil
	}

	var g errgroup.Group
	for _, path := range files {
		path := path
		g.Go(func() error {
			return decompressFile(path, cfg.Compression)
		})
	}

	return g.Wait()
}

func decompressFile(path string, cfg *config.CompressionConfig) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()

	outPath := strings.TrimSuffix(path, compressedExt)
	if outPath == path {
		outPath = path + ".out"
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer out.Close()

	dw := deflate.NewDecompressWriter(out, deflate.WithScratchSize(cfg.ScratchSize))
	if _, err := io.Copy(dw, in); err != nil {
		return fmt.Errorf("decompress %s: %w", path, err)
	}
	if err := dw.Close(); err != nil {
		return fmt.Errorf("finish %s: %w", path, err)
	}

	logger.Info("decompressed file", zap.String("path", path),
		zap.Uint64("in", dw.TotalIn()), zap.Uint64("out", dw.TotalOut()))

	return out.Close()
}
