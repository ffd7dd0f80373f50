package main

// Upload reference syllabi into the vector store. Reference documents carry
// no student context and are not written to COS or the metadata table.
//
//   go run ./cmd/reference path/to/syllabus.pdf "PJM 5900"
//   go run ./cmd/reference path/to/syllabi_dir/ "PJM 5900"

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"cpl-backend/internal/bootstrap"
	"cpl-backend/internal/ingest"
	"cpl-backend/internal/shared/config"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: reference <file-or-directory> <course-code>")
		os.Exit(2)
	}
	path := os.Args[1]
	courseCode := os.Args[2]

	cfg := config.Load()
	svc, err := bootstrap.BuildReferenceService(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		log.Fatalf("stat %s: %v", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = listSupportedFiles(path)
		if err != nil {
			log.Fatalf("list %s: %v", path, err)
		}
		if len(files) == 0 {
			log.Fatalf("no PDF/DOCX/TXT files found in %s", path)
		}
	}

	ctx := context.Background()
	succeeded, failed := 0, 0
	for _, file := range files {
		if err := uploadOne(ctx, svc, file, courseCode); err != nil {
			log.Printf("FAILED %s: %v", filepath.Base(file), err)
			failed++
			continue
		}
		succeeded++
	}

	log.Printf("reference upload complete: %d succeeded, %d failed, %d total", succeeded, failed, len(files))
	if failed > 0 {
		os.Exit(1)
	}
}

func uploadOne(ctx context.Context, svc *ingest.Service, path, courseCode string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result, err := svc.Ingest(ctx, ingest.UploadInput{
		FileName:     filepath.Base(path),
		Data:         data,
		DocumentType: ingest.DocTypeReferenceSyllabus,
		Student:      ingest.StudentContext{TargetCourse: courseCode},
	})
	if err != nil {
		return err
	}

	log.Printf("uploaded %s: document_id=%s chunks=%d truncated=%d",
		filepath.Base(path), result.DocumentID, result.ChunksCreated, result.ChunksTruncated)
	return nil
}

func listSupportedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pdf", ".docx", ".txt":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
