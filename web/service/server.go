package service

import (
	"runtime"

	"quill/config"
	"quill/logger"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/atomic"
)

var pageViews atomic.Int64

// Status is the snapshot rendered on the admin dashboard.
type Status struct {
	CPUPercent float64 `json:"cpuPercent"`
	Mem        struct {
		Current uint64 `json:"current"`
		Total   uint64 `json:"total"`
	} `json:"mem"`
	Uptime     uint64 `json:"uptime"`
	Goroutines int    `json:"goroutines"`
	PageViews  int64  `json:"pageViews"`
	Posts      int64  `json:"posts"`
	Comments   int64  `json:"comments"`
	Users      int64  `json:"users"`
	Version    string `json:"version"`
}

// ServerService gathers host and content statistics for the admin panel.
type ServerService struct {
	postService    PostService
	commentService CommentService
	userService    UserService
}

// AddPageView bumps the process-lifetime page view counter.
func AddPageView() {
	pageViews.Inc()
}

// GetStatus collects a fresh status snapshot. Individual readings that
// fail are logged and leave zero values rather than failing the page.
func (s *ServerService) GetStatus() *Status {
	status := &Status{
		Goroutines: runtime.NumGoroutine(),
		PageViews:  pageViews.Load(),
		Version:    config.GetVersion(),
	}

	percents, err := cpu.Percent(0, false)
	if err != nil {
		logger.Warning("get cpu percent failed:", err)
	} else if len(percents) > 0 {
		status.CPUPercent = percents[0]
	}

	upTime, err := host.Uptime()
	if err != nil {
		logger.Warning("get uptime failed:", err)
	} else {
		status.Uptime = upTime
	}

	memInfo, err := mem.VirtualMemory()
	if err != nil {
		logger.Warning("get virtual memory failed:", err)
	} else {
		status.Mem.Current = memInfo.Used
		status.Mem.Total = memInfo.Total
	}

	if count, err := s.postService.CountPosts(); err == nil {
		status.Posts = count
	}
	if count, err := s.commentService.CountComments(); err == nil {
		status.Comments = count
	}
	if count, err := s.userService.CountUsers(); err == nil {
		status.Users = count
	}

	return status
}
