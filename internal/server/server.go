package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"chunkscribe/internal/export"
	"chunkscribe/internal/transcriber"
	"chunkscribe/internal/transcript"
)

// Transcriber is what the server needs from the pipeline.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, data []byte, reqCtx transcriber.Context) (*transcript.Transcript, error)
}

// Server exposes the transcription pipeline as an HTTP job API: upload audio,
// poll the job, download an export.
type Server struct {
	app      *fiber.App
	jobs     *jobStore
	pipeline Transcriber
}

func New(pipeline Transcriber, maxUploadBytes int64) *Server {
	s := &Server{
		jobs:     newJobStore(),
		pipeline: pipeline,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "chunkscribe",
		BodyLimit:             int(maxUploadBytes) + 1<<20, // room for multipart overhead
		DisableStartupMessage: true,
	})
	s.routes()

	return s
}

func (s *Server) routes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := s.app.Group("/v1")
	v1.Post("/transcriptions", s.handleCreate)
	v1.Get("/transcriptions/:id", s.handleGet)
	v1.Get("/transcriptions/:id/export", s.handleExport)
}

func (s *Server) handleCreate(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "`audio` file field is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to open upload"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to read upload"})
	}

	reqCtx := transcriber.Context{
		AudioType:   c.FormValue("audio_type"),
		Topic:       c.FormValue("topic"),
		Description: c.FormValue("description"),
		Language:    c.FormValue("language"),
	}
	if speakers := c.FormValue("speakers"); speakers != "" {
		n, err := strconv.Atoi(speakers)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid `speakers` value"})
		}
		reqCtx.Speakers = n
	}

	job := s.jobs.Create(fileHeader.Filename)
	log.Printf("server: job %s accepted: %s (%d bytes)", job.ID, job.Filename, len(data))

	go s.runJob(job.ID, fileHeader.Filename, data, reqCtx)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"id":     job.ID,
		"status": job.Status,
	})
}

// runJob drives the pipeline outside the request cycle. The request context
// is gone by now, so the job owns its own lifetime.
func (s *Server) runJob(jobID, filename string, data []byte, reqCtx transcriber.Context) {
	start := time.Now()

	t, err := s.pipeline.Transcribe(context.Background(), filename, data, reqCtx)
	if err != nil {
		log.Printf("server: job %s failed after %v: %v", jobID, time.Since(start).Round(time.Millisecond), err)
		s.jobs.Fail(jobID, err.Error())
		return
	}

	log.Printf("server: job %s completed in %v: %d segments, %d failed chunks", jobID, time.Since(start).Round(time.Millisecond), len(t.Segments), len(t.FailedChunkIndices))
	s.jobs.Complete(jobID, t)
}

func (s *Server) handleGet(c *fiber.Ctx) error {
	job := s.jobs.Get(c.Params("id"))
	if job == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}

	resp := fiber.Map{
		"id":        job.ID,
		"status":    job.Status,
		"filename":  job.Filename,
		"createdAt": job.CreatedAt,
	}
	switch job.Status {
	case StatusFailed:
		resp["error"] = job.Error
	case StatusCompleted:
		resp["sourceChunkCount"] = job.Transcript.SourceChunkCount
		resp["failedChunkIndices"] = job.Transcript.FailedChunkIndices
		resp["segmentCount"] = len(job.Transcript.Segments)
		resp["text"] = job.Transcript.FullText
	}
	return c.JSON(resp)
}

func (s *Server) handleExport(c *fiber.Ctx) error {
	job := s.jobs.Get(c.Params("id"))
	if job == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}
	if job.Status != StatusCompleted {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": fmt.Sprintf("job is %s, not completed", job.Status)})
	}

	format, err := export.ParseFormat(c.Query("format", "txt"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	artifact, err := export.Render(job.Transcript, format, "transcript-"+job.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, artifact.MIMEType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	return c.Send(artifact.Data)
}

// Listen blocks serving HTTP until Shutdown is called.
func (s *Server) Listen(addr string) error {
	log.Printf("server: listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown drains connections and stops the server.
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(5 * time.Second)
}
