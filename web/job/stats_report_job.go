// Package job holds the periodic tasks scheduled by the web server's cron.
package job

import (
	"quill/logger"
	"quill/web/service"
)

// StatsReportJob forwards a daily content summary to the Telegram notifier.
type StatsReportJob struct {
	tgbot          service.Tgbot
	postService    service.PostService
	commentService service.CommentService
	userService    service.UserService
}

// NewStatsReportJob creates a new daily report job instance.
func NewStatsReportJob() *StatsReportJob {
	return new(StatsReportJob)
}

// Run gathers the counts and sends the report.
func (j *StatsReportJob) Run() {
	if !j.tgbot.IsRunning() {
		return
	}

	posts, err := j.postService.CountPosts()
	if err != nil {
		logger.Warning("stats report: count posts failed:", err)
		return
	}
	comments, err := j.commentService.CountComments()
	if err != nil {
		logger.Warning("stats report: count comments failed:", err)
		return
	}
	users, err := j.userService.CountUsers()
	if err != nil {
		logger.Warning("stats report: count users failed:", err)
		return
	}

	j.tgbot.SendReport(posts, comments, users)
}
