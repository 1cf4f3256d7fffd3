package zeromq

import (
	"sort"
	"sync"

	customlog "github.com/open-teleop/keyteleop/pkg/log"
)

// TopicInfo holds metadata and publish statistics for an outbound topic
type TopicInfo struct {
	Topic         string
	MessageType   string
	Address       string
	Reliability   string
	Depth         int
	PublishCount  int64
	DropCount     int64
	LastPublished int64
}

// TopicRegistry maintains information about outbound topics
type TopicRegistry struct {
	logger customlog.Logger
	topics map[string]*TopicInfo
	mu     sync.RWMutex
}

// NewTopicRegistry creates a new topic registry
func NewTopicRegistry(logger customlog.Logger) *TopicRegistry {
	return &TopicRegistry{
		logger: logger,
		topics: make(map[string]*TopicInfo),
	}
}

// Register adds or replaces a topic. Statistics start at zero.
func (r *TopicRegistry) Register(info TopicInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info.PublishCount = 0
	info.DropCount = 0
	info.LastPublished = 0
	r.topics[info.Topic] = &info

	r.logger.Debugf("Registered topic '%s' (type: %s, %s depth %d)",
		info.Topic, info.MessageType, info.Reliability, info.Depth)
}

// RecordPublish updates statistics for a delivered message
func (r *TopicRegistry) RecordPublish(topic string, timestamp int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info, exists := r.topics[topic]; exists {
		info.PublishCount++
		info.LastPublished = timestamp
	}
}

// RecordDrop counts a message that could not be queued for its subscribers
func (r *TopicRegistry) RecordDrop(topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info, exists := r.topics[topic]; exists {
		info.DropCount++
	}
}

// GetTopicInfo gets information for a topic
func (r *TopicRegistry) GetTopicInfo(topic string) (*TopicInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.topics[topic]
	if !exists {
		return nil, false
	}

	// Return a copy to avoid race conditions
	infoCopy := *info
	return &infoCopy, true
}

// GetAllTopics returns the registered topic names, sorted
func (r *TopicRegistry) GetAllTopics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := make([]string, 0, len(r.topics))
	for topic := range r.topics {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	return topics
}

// GetTopicStats returns a map of topic statistics
func (r *TopicRegistry) GetTopicStats() map[string]map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]map[string]interface{})

	for topic, info := range r.topics {
		stats[topic] = map[string]interface{}{
			"count":          info.PublishCount,
			"dropped":        info.DropCount,
			"last_published": info.LastPublished,
			"type":           info.MessageType,
			"reliability":    info.Reliability,
			"depth":          info.Depth,
		}
	}

	return stats
}
