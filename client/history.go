package client

import "sync"

// FetchFunc запрашивает у сервера страницу истории от новых к старым
// и возвращает сообщения страницы вместе с признаком наличия следующей
type FetchFunc func(page, pageSize int) ([]Message, bool, error)

// HistoryLoader - подгрузка истории для бесконечной прокрутки.
// Одновременно допускается не более одного запроса "load more":
// триггер, пришедший во время полета, отбрасывается, а не ставится в очередь.
type HistoryLoader struct {
	mu        sync.Mutex
	inFlight  bool
	exhausted bool
	nextPage  int
	pageSize  int
	fetch     FetchFunc
	engine    *Engine
}

func NewHistoryLoader(engine *Engine, pageSize int, fetch FetchFunc) *HistoryLoader {
	if pageSize < 1 {
		pageSize = 20
	}
	return &HistoryLoader{
		nextPage: 1,
		pageSize: pageSize,
		fetch:    fetch,
		engine:   engine,
	}
}

// reverse переворачивает страницу "от новых к старым" в порядок отображения
func reverse(messages []Message) []Message {
	out := make([]Message, len(messages))
	for i, m := range messages {
		out[len(messages)-1-i] = m
	}
	return out
}

// LoadInitial загружает страницу 1 и целиком заменяет подтвержденный список.
// Вызывается и при старте, и после переподключения: движок не пытается
// закрывать пропуски точечно, он просто перечитывает первое окно.
func (l *HistoryLoader) LoadInitial() error {
	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return nil
	}
	l.inFlight = true
	l.mu.Unlock()

	messages, hasMore, err := l.fetch(1, l.pageSize)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight = false
	if err != nil {
		return err
	}
	l.engine.ReplaceCommitted(reverse(messages))
	l.nextPage = 2
	l.exhausted = !hasMore && len(messages) < l.pageSize
	return nil
}

// LoadMore подгружает следующую, более старую страницу и вставляет ее
// перед текущим списком. Возвращает false, если триггер отброшен
// (запрос уже в полете или история исчерпана).
func (l *HistoryLoader) LoadMore() (bool, error) {
	l.mu.Lock()
	if l.inFlight || l.exhausted {
		l.mu.Unlock()
		return false, nil
	}
	l.inFlight = true
	page := l.nextPage
	l.mu.Unlock()

	messages, _, err := l.fetch(page, l.pageSize)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight = false
	if err != nil {
		return false, err
	}
	if len(messages) > 0 {
		l.engine.PrependCommitted(reverse(messages))
		l.nextPage = page + 1
	}
	// Неполная страница означает, что дальше запрашивать нечего
	if len(messages) < l.pageSize {
		l.exhausted = true
	}
	return true, nil
}

// Exhausted сообщает, что более старых страниц не осталось
func (l *HistoryLoader) Exhausted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exhausted
}
