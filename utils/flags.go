package utils

import "fmt"

/*
Repeatable flag values. The stdlib flag package has no native list support,
so repeated flags collect into these types via flag.Var.
*/

type EnvList []string

func (e *EnvList) String() string {
	return fmt.Sprintf("%v", *e)
}

func (e *EnvList) Set(value string) error {
	*e = append(*e, value)
	return nil
}
