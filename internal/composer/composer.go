package composer

import (
	"context"
	"errors"
	"log"
	"sync"

	"microfeed/internal/models"
	"microfeed/internal/uploader"
)

var (
	ErrEmptyText          = errors.New("текст не может быть пустым")
	ErrAttachmentDisabled = errors.New("вложения не поддерживаются")
)

// Inserter writes new documents. Author fields are filled by the backend.
type Inserter interface {
	Insert(ctx context.Context, scope models.Scope, doc *models.Document) error
}

type Uploader interface {
	Upload(ctx context.Context, ns uploader.Namespace, file models.Attachment) (string, error)
}

// Composer collects the input of one post or comment form.
type Composer struct {
	scope       models.Scope
	inserter    Inserter
	uploader    Uploader
	attachments bool

	mu         sync.Mutex
	text       string
	attachment *models.Attachment

	inflight sync.WaitGroup
}

func NewPostComposer(inserter Inserter, uploader Uploader) *Composer {
	return &Composer{
		scope:       models.PostsScope(),
		inserter:    inserter,
		uploader:    uploader,
		attachments: true,
	}
}

func NewCommentComposer(inserter Inserter, postID string) *Composer {
	return &Composer{
		scope:    models.CommentsScope(postID),
		inserter: inserter,
	}
}

func (c *Composer) Scope() models.Scope {
	return c.scope
}

func (c *Composer) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
}

func (c *Composer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

func (c *Composer) Attach(file models.Attachment) error {
	if !c.attachments {
		return ErrAttachmentDisabled
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.attachment = &file
	return nil
}

func (c *Composer) Attachment() *models.Attachment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attachment
}

func (c *Composer) CanSubmit() bool {
	return c.Text() != ""
}

// Submit uploads the attachment, if any, and issues the insert without
// waiting for it. The input is cleared as soon as the submission is issued,
// before the upload, whatever its outcome. Upload errors are returned; insert
// errors are only logged and the new row shows up through the live query or
// not at all.
func (c *Composer) Submit(ctx context.Context) error {
	c.mu.Lock()
	text := c.text
	attachment := c.attachment
	if text == "" {
		c.mu.Unlock()
		return ErrEmptyText
	}
	c.text = ""
	c.attachment = nil
	c.mu.Unlock()

	doc := &models.Document{Text: text}

	if attachment != nil {
		url, err := c.uploader.Upload(ctx, uploader.Images, *attachment)
		if err != nil {
			return err
		}
		doc.Image = url
	}

	insertCtx := context.WithoutCancel(ctx)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		if err := c.inserter.Insert(insertCtx, c.scope, doc); err != nil {
			log.Printf("Ошибка публикации в %s: %v", c.scope.Key(), err)
		}
	}()

	return nil
}

// Wait blocks until every issued insert has finished.
func (c *Composer) Wait() {
	c.inflight.Wait()
}
