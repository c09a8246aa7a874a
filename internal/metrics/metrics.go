// Package metrics holds the bot's prometheus collectors and carries their
// values across restarts.
package metrics

import (
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"
	"strconv"
	"sync"
)

const (
	namespace = "coingecko"
	subsystem = "telegram_bot"
)

// Store persists metric values between runs.
type Store interface {
	SaveMetric(metricName string, value float64) error
	GetMetric(metricName string) (float64, error)
	SaveMetricWithLabels(metricName, labelKey, labelValue string, value float64) error
	GetMetricsWithLabels(metricName string) (map[string]map[string]float64, error)
}

type BotMetrics struct {
	CommandsProcessed  prometheus.Counter
	MessagesHandled    prometheus.Counter
	ChannelsCount      prometheus.Gauge
	ChannelNames       *prometheus.CounterVec
	MessagesPerChannel *prometheus.CounterVec
	ProviderRequests   *prometheus.CounterVec

	mu          sync.Mutex
	channelsSet map[int64]string
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		CommandsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "commands_processed",
			Help:      "The total number of processed commands",
		}),
		MessagesHandled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "messages_handled",
			Help:      "The total number of handled messages",
		}),
		ChannelsCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "channels_count",
			Help:      "The current number of unique channels the bot is operating in",
		}),
		ChannelNames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "channel_names",
				Help:      "Tracks channels the bot has interacted with",
			},
			[]string{"chat_id", "chat_name"},
		),
		MessagesPerChannel: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "messages_per_channel",
				Help:      "The total number of messages handled per channel",
			},
			[]string{"chat_id", "chat_name"},
		),
		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "provider_requests",
				Help:      "Market data requests by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		channelsSet: make(map[int64]string),
	}

	reg.MustRegister(
		m.CommandsProcessed,
		m.MessagesHandled,
		m.ChannelsCount,
		m.ChannelNames,
		m.MessagesPerChannel,
		m.ProviderRequests,
	)

	return m
}

// TrackMessage counts a handled message from chatID. Private chats have no
// title, so they are named after their id.
func (m *BotMetrics) TrackMessage(chatID int64, chatName string) {
	if chatName == "" {
		chatName = fmt.Sprintf("%s-%d", "PrivateChat", chatID)
	}

	m.MessagesHandled.Inc()
	m.updateChannelsSet(chatID, chatName)
	m.MessagesPerChannel.WithLabelValues(strconv.FormatInt(chatID, 10), chatName).Inc()
}

func (m *BotMetrics) updateChannelsSet(chatID int64, chatName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.channelsSet[chatID]; !exists {
		m.channelsSet[chatID] = chatName
		m.ChannelsCount.Set(float64(len(m.channelsSet)))

		m.ChannelNames.WithLabelValues(strconv.FormatInt(chatID, 10), chatName).Inc()
	}
}

// Load adds the values saved by a previous run.
func (m *BotMetrics) Load(store Store) {
	m.mu.Lock()
	defer m.mu.Unlock()

	commandsProcessed, err := store.GetMetric("commands_processed")
	if err != nil {
		log.Errorf("failed to load commands_processed: %v", err)
	}
	messagesHandled, err := store.GetMetric("messages_handled")
	if err != nil {
		log.Errorf("failed to load messages_handled: %v", err)
	}

	m.CommandsProcessed.Add(commandsProcessed)
	m.MessagesHandled.Add(messagesHandled)

	loadLabeledMetrics(store, "channel_names", func(chatIDStr, chatName string, _ float64) {
		chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			log.Errorf("failed to parse chatID %s: %v", chatIDStr, err)
			return
		}
		if _, exists := m.channelsSet[chatID]; exists {
			return
		}
		m.ChannelNames.WithLabelValues(chatIDStr, chatName).Inc()
		m.channelsSet[chatID] = chatName
	})
	m.ChannelsCount.Set(float64(len(m.channelsSet)))

	loadLabeledMetrics(store, "messages_per_channel", func(chatID, chatName string, value float64) {
		m.MessagesPerChannel.WithLabelValues(chatID, chatName).Add(value)
	})

	loadLabeledMetrics(store, "provider_requests", func(provider, outcome string, value float64) {
		m.ProviderRequests.WithLabelValues(provider, outcome).Add(value)
	})

	log.Debug("metrics loaded from database")
}

func loadLabeledMetrics(store Store, metricName string, callback func(labelKey, labelValue string, value float64)) {
	metricsWithLabels, err := store.GetMetricsWithLabels(metricName)
	if err != nil {
		log.Errorf("failed to load %s: %v", metricName, err)
		return
	}
	for labelKey, labelValues := range metricsWithLabels {
		for labelValue, value := range labelValues {
			callback(labelKey, labelValue, value)
		}
	}
}

// Save writes the current values to store. It keeps going past failures and
// returns the first one.
func (m *BotMetrics) Save(store Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	keep(store.SaveMetric("commands_processed", GetMetricValue(m.CommandsProcessed)))
	keep(store.SaveMetric("messages_handled", GetMetricValue(m.MessagesHandled)))
	keep(store.SaveMetric("channels_count", float64(len(m.channelsSet))))

	for chatID, chatName := range m.channelsSet {
		keep(store.SaveMetricWithLabels("channel_names", strconv.FormatInt(chatID, 10), chatName, float64(chatID)))
	}

	keep(saveLabeledMetrics(store, "messages_per_channel", m.MessagesPerChannel, "chat_id", "chat_name"))
	keep(saveLabeledMetrics(store, "provider_requests", m.ProviderRequests, "provider", "outcome"))

	log.Debug("metrics saved to database")
	return firstErr
}

// saveLabeledMetrics stores every child of vec under its two labels.
func saveLabeledMetrics(store Store, metricName string, vec *prometheus.CounterVec, keyLabel, valueLabel string) error {
	metricChan := make(chan prometheus.Metric)
	go func() {
		vec.Collect(metricChan)
		close(metricChan)
	}()

	var firstErr error
	for metric := range metricChan {
		metricProto := &dto.Metric{}
		if err := metric.Write(metricProto); err != nil {
			log.Errorf("failed to read %s metric: %v", metricName, err)
			continue
		}
		var labelKey, labelValue string
		for _, label := range metricProto.Label {
			switch label.GetName() {
			case keyLabel:
				labelKey = label.GetValue()
			case valueLabel:
				labelValue = label.GetValue()
			}
		}
		if err := store.SaveMetricWithLabels(metricName, labelKey, labelValue, metricProto.Counter.GetValue()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// GetMetricValue reads the current value of a single counter or gauge.
func GetMetricValue(metric prometheus.Collector) float64 {
	metricChan := make(chan prometheus.Metric, 1)
	metric.Collect(metricChan)
	close(metricChan)

	m, ok := <-metricChan
	if !ok {
		return 0
	}

	metricProto := &dto.Metric{}
	if err := m.Write(metricProto); err != nil {
		log.Errorf("failed to read metric value: %v", err)
		return 0
	}

	switch {
	case metricProto.Counter != nil:
		return metricProto.Counter.GetValue()
	case metricProto.Gauge != nil:
		return metricProto.Gauge.GetValue()
	}
	return 0
}
