package config

import (
	"weftshop.GO/cron/jobs"
)

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

var CronJobs = map[string]CronJob{
	"ordercancel":  {Schedule: "0 3 * * *", Job: jobs.OrderCancelJob},
	"stockrebuild": {Schedule: "0 4 * * 0", Job: jobs.StockRebuildJob},
	// Add more jobs here
}
