// Package queue owns the RabbitMQ print dispatch pipeline: enqueued print
// jobs are published here and the consumer spools the 3D asset, advancing the
// job queued -> printing -> completed/failed.
package queue

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/streadway/amqp"

	"cudliy/dao/mysql"
	"cudliy/models"
	"cudliy/pkg/sse"
	"cudliy/util"
)

// PrintQueue is the print dispatch queue interface.
type PrintQueue interface {
	PublishPrintJob([]byte, int) error
	ConsumePrint() error
	Close() error
}

var (
	printOnce     sync.Once
	printInstance PrintQueue
	printInitErr  error

	// spool directory for downloaded model files, set at init
	spoolDir = "./spool"
)

// InitPrintQueue initializes the singleton print queue (first call wins).
func InitPrintQueue(dsn, spool string) error {
	printOnce.Do(func() {
		if spool != "" {
			spoolDir = spool
		}
		inst, err := newPrintAMQPQueue(dsn)
		if err != nil {
			printInitErr = err
			log.Printf("failed to init print AMQP queue: %v", err)
			return
		}
		printInstance = inst
	})
	return printInitErr
}

// GetPrintQueue returns the singleton PrintQueue.
func GetPrintQueue() (PrintQueue, error) {
	if printInstance == nil {
		if printInitErr != nil {
			return nil, printInitErr
		}
		return nil, errors.New("print queue not initialized; call InitPrintQueue")
	}
	return printInstance, nil
}

// --- AMQP implementation ------------------------------------------------
type printAMQPQueue struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	queueName string
}

func newPrintAMQPQueue(dsn string) (PrintQueue, error) {
	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	// dead-letter exchange and queue for print jobs that exhaust retries
	dlxName := "print_dlq_exchange"
	dlqName := "print_dlq"

	if err := ch.ExchangeDeclare(dlxName, "direct", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	if err := ch.QueueBind(dlqName, dlqName, dlxName, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    dlxName,
		"x-dead-letter-routing-key": dlqName,
		"x-max-priority":            10,
	}

	q, err := ch.QueueDeclare(
		"print_jobs", // name
		true,         // durable
		false,        // delete when unused
		false,        // exclusive
		false,        // no-wait
		args,         // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	// spool downloads are IO heavy, keep the prefetch small
	_ = ch.Qos(5, 0, false)

	return &printAMQPQueue{conn: conn, ch: ch, queueName: q.Name}, nil
}

// PublishPrintJob enqueues a dispatch payload with the given priority.
func (q *printAMQPQueue) PublishPrintJob(b []byte, priority int) error {
	if priority < 0 || priority > 10 {
		priority = 5
	}
	return q.ch.Publish(
		"", q.queueName, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         b,
			DeliveryMode: amqp.Persistent,
			Priority:     uint8(priority),
		},
	)
}

// publishWithHeaders republishes a message carrying retry headers.
func (q *printAMQPQueue) publishWithHeaders(b []byte, headers amqp.Table) error {
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         b,
		DeliveryMode: amqp.Persistent,
		Headers:      headers,
		Priority:     5,
	}
	return q.ch.Publish("", q.queueName, false, false, msg)
}

// ConsumePrint runs the dispatch loop. Each job: mark printing, spool the
// model file, mark completed; failures retry up to 3 times before the DLQ.
func (q *printAMQPQueue) ConsumePrint() error {
	deliveries, err := q.ch.Consume(q.queueName, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	concurrency := 5
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for d := range deliveries {
		sem <- struct{}{}
		wg.Add(1)

		go func(del amqp.Delivery) {
			defer func() { <-sem; wg.Done() }()

			var dispatch models.PrintDispatch
			if err := json.Unmarshal(del.Body, &dispatch); err != nil {
				log.Printf("Invalid print dispatch payload: %v", err)
				_ = del.Nack(false, false) // DLQ
				return
			}

			if err := mysql.UpdatePrintJobStatus(dispatch.PrintID, models.PrintStatusPrinting); err != nil {
				log.Printf("Failed to mark print job printing, print id: %s: %v", dispatch.PrintID, err)
				q.retryOrDead(del, dispatch, err)
				return
			}

			_, err := util.DownloadModelFile(dispatch.FileURL, spoolDir, dispatch.PrintID)
			if err != nil {
				es := err.Error()
				// 4xx on the asset URL never recovers; everything else retries
				isPermanent := strings.Contains(es, "status 4")

				if isPermanent {
					log.Printf("Permanent error spooling print job, print id: %s: %v", dispatch.PrintID, err)
					q.failJob(dispatch)
					_ = del.Nack(false, false)
					return
				}

				q.retryOrDead(del, dispatch, err)
				return
			}

			if err := mysql.UpdatePrintJobStatus(dispatch.PrintID, models.PrintStatusCompleted); err != nil {
				log.Printf("Failed to mark print job completed, print id: %s: %v", dispatch.PrintID, err)
				if del.Redelivered {
					_ = del.Nack(false, false)
				} else {
					_ = del.Nack(false, true)
				}
				return
			}

			q.notify(dispatch, models.PrintStatusCompleted)
			_ = del.Ack(false)
			log.Printf("Print job dispatched successfully, print id: %s", dispatch.PrintID)
		}(d)
	}

	wg.Wait()
	return nil
}

const maxPrintRetries = 3

// attemptsFrom reads the x-attempts retry counter from delivery headers.
func attemptsFrom(headers amqp.Table) int {
	h, ok := headers["x-attempts"]
	if !ok {
		return 0
	}
	switch v := h.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// retryHeaders copies delivery headers with x-attempts bumped by one.
func retryHeaders(headers amqp.Table) amqp.Table {
	out := amqp.Table{"x-attempts": attemptsFrom(headers) + 1}
	for k, v := range headers {
		if k != "x-attempts" {
			out[k] = v
		}
	}
	return out
}

// retryOrDead republishes the delivery with a bumped attempt counter, or
// fails the job to the DLQ once retries are exhausted. Every transient
// failure in the consumer goes through here so nothing can loop unbounded.
func (q *printAMQPQueue) retryOrDead(del amqp.Delivery, dispatch models.PrintDispatch, cause error) {
	attempts := attemptsFrom(del.Headers)
	if attempts >= maxPrintRetries {
		log.Printf("Print job exceeded retries, sending to DLQ, print id: %s: %v", dispatch.PrintID, cause)
		q.failJob(dispatch)
		_ = del.Nack(false, false)
		return
	}
	if err := q.publishWithHeaders(del.Body, retryHeaders(del.Headers)); err != nil {
		log.Printf("Failed to republish print job for retry, print id: %s: %v", dispatch.PrintID, err)
		_ = del.Nack(false, false)
		return
	}
	log.Printf("Requeued print job for retry #%d, print id: %s", attempts+1, dispatch.PrintID)
	_ = del.Ack(false)
}

func (q *printAMQPQueue) failJob(dispatch models.PrintDispatch) {
	if err := mysql.UpdatePrintJobStatus(dispatch.PrintID, models.PrintStatusFailed); err != nil {
		log.Printf("Failed to mark print job failed, print id: %s: %v", dispatch.PrintID, err)
	}
	q.notify(dispatch, models.PrintStatusFailed)
}

func (q *printAMQPQueue) notify(dispatch models.PrintDispatch, status string) {
	payload := struct {
		Type        string `json:"type"`
		UserID      uint64 `json:"user_id"`
		PrintID     string `json:"print_id"`
		CreationID  uint64 `json:"creation_id"`
		ProductName string `json:"product_name"`
		Status      string `json:"status"`
	}{
		Type:        "print",
		UserID:      dispatch.UserID,
		PrintID:     dispatch.PrintID,
		CreationID:  dispatch.CreationID,
		ProductName: dispatch.ProductName,
		Status:      status,
	}

	if hub := sse.GetHub(); hub != nil {
		if b, err := json.Marshal(payload); err == nil {
			hub.PublishTopic(strconv.FormatUint(dispatch.UserID, 10), b)
		}
	}
}

func (q *printAMQPQueue) Close() error {
	if q.ch != nil {
		_ = q.ch.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}
