package enums

import "database/sql/driver"

// TaskType names the kind of work a housekeeping task performs.
type TaskType string

const (
	TaskTidy        TaskType = "tidy"
	TaskClean       TaskType = "clean"
	TaskMaintenance TaskType = "maintenance"
	TaskBlock       TaskType = "block"
)

var validTaskTypes = []TaskType{TaskTidy, TaskClean, TaskMaintenance, TaskBlock}

var taskTypeAliases = map[string]TaskType{
	"tidy":        TaskTidy,
	"arrumacao":   TaskTidy,
	"clean":       TaskClean,
	"limpeza":     TaskClean,
	"maintenance": TaskMaintenance,
	"manutencao":  TaskMaintenance,
	"block":       TaskBlock,
	"bloqueado":   TaskBlock,
	"bloqueio":    TaskBlock,
}

func (t TaskType) String() string {
	return string(t)
}

func (t TaskType) IsValid() bool {
	for _, candidate := range validTaskTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// RoomStatus is the task-family status a room takes while the task is pending.
func (t TaskType) RoomStatus() RoomStatus {
	switch t {
	case TaskTidy:
		return RoomInHousekeeping
	case TaskClean:
		return RoomInCleaning
	case TaskMaintenance:
		return RoomInMaintenance
	case TaskBlock:
		return RoomBlocked
	default:
		return ""
	}
}

// Label is the human wording used in stock movement notes.
func (t TaskType) Label() string {
	switch t {
	case TaskTidy:
		return "housekeeping"
	case TaskClean:
		return "cleaning"
	case TaskMaintenance:
		return "maintenance"
	case TaskBlock:
		return "block"
	default:
		return string(t)
	}
}

func ParseTaskType(value string) (TaskType, error) {
	return lookup("task type", value, taskTypeAliases)
}

func (t *TaskType) Scan(value any) error {
	raw, err := scanString(value)
	if err != nil {
		return err
	}
	parsed, err := ParseTaskType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TaskType) Value() (driver.Value, error) {
	return stringValue(t)
}

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

var taskStatusAliases = map[string]TaskStatus{
	"pending":   TaskPending,
	"pendente":  TaskPending,
	"completed": TaskCompleted,
	"concluido": TaskCompleted,
	"concluida": TaskCompleted,
}

func (s TaskStatus) String() string {
	return string(s)
}

func (s TaskStatus) IsValid() bool {
	return s == TaskPending || s == TaskCompleted
}

func ParseTaskStatus(value string) (TaskStatus, error) {
	return lookup("task status", value, taskStatusAliases)
}

func (s *TaskStatus) Scan(value any) error {
	raw, err := scanString(value)
	if err != nil {
		return err
	}
	parsed, err := ParseTaskStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s TaskStatus) Value() (driver.Value, error) {
	return stringValue(s)
}
