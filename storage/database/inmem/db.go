package inmemdb

import (
	"sync"

	"github.com/trezcool/ubao/core/notice"
	"github.com/trezcool/ubao/core/student"
)

type (
	noticeTable struct {
		mutex sync.RWMutex
		table map[int]*notice.Notice
		pk    int
	}

	studentTable struct {
		mutex sync.RWMutex
		table map[int]*student.Student
		pk    int
	}

	DB struct {
		notice  *noticeTable
		student *studentTable
	}
)

func Open() (*DB, error) {
	return &DB{
		notice:  &noticeTable{table: make(map[int]*notice.Notice)},
		student: &studentTable{table: make(map[int]*student.Student)},
	}, nil
}
