package client

import (
	"context"
	"errors"
	"log"
	"sync"

	"microfeed/internal/composer"
	"microfeed/internal/feed"
	"microfeed/internal/models"
	"microfeed/internal/session"
)

type View int

const (
	ViewAuth View = iota
	ViewFeed
)

func (v View) String() string {
	if v == ViewFeed {
		return "feed"
	}
	return "auth"
}

var ErrNotStarted = errors.New("приложение не запущено")

// Thread is the open comment section of one post.
type Thread struct {
	Comments *feed.Synchronizer[models.Comment]
	Composer *composer.Composer
}

// App switches between the auth and feed views as the session changes and
// owns the live subscriptions of the feed view.
type App struct {
	manager  *session.Manager
	source   feed.Source
	inserter composer.Inserter
	uploader composer.Uploader

	feed  *feed.Synchronizer[models.Post]
	posts *composer.Composer

	mu           sync.Mutex
	ctx          context.Context
	cancel       context.CancelFunc
	view         View
	threads      map[string]*Thread
	unsubscribe  func()
	onViewChange func(View)
}

func New(manager *session.Manager, source feed.Source, inserter composer.Inserter, uploader composer.Uploader) *App {
	return &App{
		manager:  manager,
		source:   source,
		inserter: inserter,
		uploader: uploader,
		feed:     feed.NewFeed(source),
		posts:    composer.NewPostComposer(inserter, uploader),
		threads:  make(map[string]*Thread),
	}
}

func (a *App) Session() *session.Manager {
	return a.manager
}

func (a *App) Feed() *feed.Synchronizer[models.Post] {
	return a.feed
}

func (a *App) Composer() *composer.Composer {
	return a.posts
}

func (a *App) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

// OnViewChange sets the listener for view switches.
func (a *App) OnViewChange(fn func(View)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onViewChange = fn
}

// Start binds the session and shows the view matching the current identity.
func (a *App) Start(ctx context.Context) {
	a.mu.Lock()
	if a.unsubscribe != nil {
		a.mu.Unlock()
		return
	}
	a.ctx, a.cancel = context.WithCancel(ctx)
	a.mu.Unlock()

	store := a.manager.Store()
	unsubscribe := store.Subscribe(a.apply)

	a.mu.Lock()
	a.unsubscribe = unsubscribe
	a.mu.Unlock()

	a.manager.Bind()
	a.apply(store.Current())
}

// Stop releases every subscription and waits for issued inserts.
func (a *App) Stop() {
	a.mu.Lock()
	unsubscribe := a.unsubscribe
	cancel := a.cancel
	a.unsubscribe = nil
	a.mu.Unlock()

	if unsubscribe == nil {
		return
	}

	a.manager.Unbind()
	unsubscribe()
	a.leaveFeed()
	cancel()

	a.posts.Wait()
}

func (a *App) apply(s models.Session) {
	a.mu.Lock()
	current := a.view
	a.mu.Unlock()

	switch {
	case !s.Empty() && current == ViewAuth:
		a.enterFeed()
	case s.Empty() && current == ViewFeed:
		a.leaveFeed()
	}
}

func (a *App) enterFeed() {
	a.mu.Lock()
	ctx := a.ctx
	a.mu.Unlock()

	if err := a.feed.Mount(ctx, models.PostsScope()); err != nil {
		log.Printf("Ошибка подписки на ленту: %v", err)
	}
	a.setView(ViewFeed)
}

func (a *App) leaveFeed() {
	a.mu.Lock()
	threads := a.threads
	a.threads = make(map[string]*Thread)
	a.mu.Unlock()

	for _, th := range threads {
		th.Comments.Unmount()
		th.Composer.Wait()
	}
	a.feed.Unmount()
	a.setView(ViewAuth)
}

func (a *App) setView(v View) {
	a.mu.Lock()
	changed := a.view != v
	a.view = v
	fn := a.onViewChange
	a.mu.Unlock()

	if changed && fn != nil {
		fn(v)
	}
}

// OpenComments mounts the comment section of a post. Opening it again
// returns the existing thread.
func (a *App) OpenComments(postID string) (*Thread, error) {
	a.mu.Lock()
	if a.ctx == nil {
		a.mu.Unlock()
		return nil, ErrNotStarted
	}
	if th, ok := a.threads[postID]; ok {
		a.mu.Unlock()
		return th, nil
	}
	ctx := a.ctx
	a.mu.Unlock()

	th := &Thread{
		Comments: feed.NewComments(a.source),
		Composer: composer.NewCommentComposer(a.inserter, postID),
	}
	if err := th.Comments.Mount(ctx, models.CommentsScope(postID)); err != nil {
		return nil, err
	}

	a.mu.Lock()
	if existing, ok := a.threads[postID]; ok {
		a.mu.Unlock()
		th.Comments.Unmount()
		return existing, nil
	}
	a.threads[postID] = th
	a.mu.Unlock()

	return th, nil
}

// CloseComments unmounts a post's comment section. Unknown ids are ignored.
func (a *App) CloseComments(postID string) {
	a.mu.Lock()
	th, ok := a.threads[postID]
	delete(a.threads, postID)
	a.mu.Unlock()

	if ok {
		th.Comments.Unmount()
		th.Composer.Wait()
	}
}
