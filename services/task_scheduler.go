package services

import (
	"database/sql"
	"log"
	"time"

	"crm-server/database"
)

// TaskScheduler periodically scans tasks: pending tasks past their due
// date are marked overdue, and assignees with a push token get one
// reminder for tasks due within the next hour.
type TaskScheduler struct {
	notificationService *NotificationService
	stop                chan struct{}
}

func NewTaskScheduler(notificationService *NotificationService) *TaskScheduler {
	return &TaskScheduler{
		notificationService: notificationService,
		stop:                make(chan struct{}),
	}
}

// Start launches the scan loop. One scan runs immediately, then every
// interval until Stop is called.
func (ts *TaskScheduler) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		ts.scan()
		for {
			select {
			case <-ticker.C:
				ts.scan()
			case <-ts.stop:
				return
			}
		}
	}()
}

func (ts *TaskScheduler) Stop() {
	close(ts.stop)
}

func (ts *TaskScheduler) scan() {
	ts.markOverdueTasks()
	ts.sendDueReminders()
}

func (ts *TaskScheduler) markOverdueTasks() {
	result, err := database.Database.Exec(`
		UPDATE tasks SET status = 'overdue', updated_at = NOW()
		WHERE status = 'pending' AND due_date IS NOT NULL AND due_date < NOW()`)
	if err != nil {
		log.Printf("Task scheduler: failed to mark overdue tasks: %v", err)
		return
	}

	if count, err := result.RowsAffected(); err == nil && count > 0 {
		log.Printf("Task scheduler: marked %d tasks overdue", count)
	}
}

func (ts *TaskScheduler) sendDueReminders() {
	rows, err := database.Database.Query(`
		SELECT t.id, t.org_id, t.title, t.due_date, u.push_token
		FROM tasks t
		JOIN users u ON t.assigned_user_id = u.id AND t.org_id = u.org_id
		WHERE t.status = 'pending'
		  AND t.reminder_sent = FALSE
		  AND t.due_date IS NOT NULL
		  AND t.due_date BETWEEN NOW() AND DATE_ADD(NOW(), INTERVAL 1 HOUR)
		  AND u.push_token IS NOT NULL`)
	if err != nil {
		log.Printf("Task scheduler: failed to fetch due tasks: %v", err)
		return
	}
	defer rows.Close()

	type dueTask struct {
		id        int64
		orgID     int64
		title     string
		dueDate   time.Time
		pushToken string
	}
	var due []dueTask
	for rows.Next() {
		var t dueTask
		var pushToken sql.NullString
		if err := rows.Scan(&t.id, &t.orgID, &t.title, &t.dueDate, &pushToken); err != nil {
			continue
		}
		t.pushToken = pushToken.String
		due = append(due, t)
	}

	for _, t := range due {
		err := ts.notificationService.SendPushNotification(
			t.pushToken,
			"Task due soon",
			t.title,
			map[string]interface{}{"task_id": t.id, "due_date": t.dueDate},
		)
		if err != nil {
			log.Printf("Task scheduler: failed to notify for task %d: %v", t.id, err)
			continue
		}

		if _, err := database.Database.Exec(
			`UPDATE tasks SET reminder_sent = TRUE WHERE org_id = ? AND id = ?`, t.orgID, t.id); err != nil {
			log.Printf("Task scheduler: failed to mark reminder sent for task %d: %v", t.id, err)
		}
	}
}
