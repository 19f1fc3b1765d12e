package repository

import "fmt"

// PersistenceError 写库被拒绝（约束冲突、连接错误等），由调用方逐条收集
type PersistenceError struct {
	Op    string
	Table string
	Key   string
	Err   error
}

func (e *PersistenceError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s %s 失败: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("%s %s(%s) 失败: %v", e.Op, e.Table, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
