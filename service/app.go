package service

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bumpboard/app/config"
	"bumpboard/app/repositories"
	"bumpboard/app/routes"
	"bumpboard/app/services"
)

const shutdownTimeout = 10 * time.Second

// RunAppServer serves the board until ctx is cancelled or the process
// receives SIGINT/SIGTERM, then drains in-flight requests.
func RunAppServer(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	files, err := repositories.NewDiskFileStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	attachments := services.NewAttachmentService(files, cfg.MaxUploadBytes)
	posts := services.NewPostService(repositories.NewPostRepository(store), attachments, services.Options{
		PageSize:            cfg.PageSize,
		PreviewChars:        cfg.PreviewChars,
		RejectOrphanReplies: cfg.RejectOrphanReplies,
	})

	router := routes.SetupRoutes(routes.Deps{
		Posts:       posts,
		Attachments: attachments,
		Store:       store,
		UploadDir:   files.Dir(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting board on %s (db %s, uploads %s)", cfg.Addr, cfg.DBPath, files.Dir())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
