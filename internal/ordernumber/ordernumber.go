// Package ordernumber формирует человекочитаемый номер заказа на стороне клиента.
//
// Формат: ПРЕФИКС-ГГММДД-NNNN, например JCB-250615-0231. Четырёхзначный суффикс случайный
// и не гарантирует глобальной уникальности: вероятность коллизии принята как бизнес-компромисс,
// дедупликация на клиенте не выполняется.
package ordernumber

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const DefaultPrefix = "JCB"

type Generator struct {
	Prefix string
	Now    func() time.Time
	Rand   func(n int) int
}

func NewGenerator(prefix string) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Generator{
		Prefix: prefix,
		Now:    time.Now,
		Rand:   rand.IntN,
	}
}

// Next возвращает новый номер. Вызывается один раз на попытку оформления заказа.
func (g *Generator) Next() string {
	now := g.Now()
	return fmt.Sprintf("%s-%02d%02d%02d-%04d",
		g.Prefix,
		now.Year()%100,
		int(now.Month()),
		now.Day(),
		g.Rand(10000))
}
