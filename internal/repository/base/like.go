package base

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern строит шаблон LIKE/ILIKE "подстрока", в котором % и _
// из пользовательского ввода совпадают буквально (ESCAPE по умолчанию '\')
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
