package matching

import (
	"strings"
)

// Distance вычисляет нормированную дистанцию Дамерау-Левенштейна
// между двумя строками. Возвращает значение в [0, 1], где 0 - полное
// совпадение. Сравнение нечувствительно к регистру и лишним пробелам.
func Distance(s1, s2 string) float64 {
	a := []rune(canonicalize(s1))
	b := []rune(canonicalize(s2))

	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 1.0
	}

	dist := damerauLevenshtein(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return float64(dist) / float64(maxLen)
}

// canonicalize приводит строку к виду для сравнения
func canonicalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// damerauLevenshtein вычисляет расстояние Дамерау-Левенштейна.
// Учитывает вставку, удаление, замену и транспозицию соседних символов -
// транспозиции в OCR рукописного текста встречаются постоянно.
func damerauLevenshtein(r1, r2 []rune) int {
	len1 := len(r1)
	len2 := len(r2)

	// Крайние случаи
	if len1 == 0 {
		return len2
	}
	if len2 == 0 {
		return len1
	}

	// Матрица (len1+2) x (len2+2) с граничными строками
	matrix := make([][]int, len1+2)
	for i := range matrix {
		matrix[i] = make([]int, len2+2)
	}

	maxDist := len1 + len2
	matrix[0][0] = maxDist
	for i := 0; i <= len1; i++ {
		matrix[i+1][0] = maxDist
		matrix[i+1][1] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j+1] = maxDist
		matrix[1][j+1] = j
	}

	// Последнее вхождение каждого символа в r1
	da := make(map[rune]int)

	for i := 1; i <= len1; i++ {
		db := 0
		for j := 1; j <= len2; j++ {
			i1 := da[r2[j-1]]
			j1 := db
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
				db = j
			}

			matrix[i+1][j+1] = min4(
				matrix[i][j]+cost,                    // замена
				matrix[i+1][j]+1,                     // вставка
				matrix[i][j+1]+1,                     // удаление
				matrix[i1][j1]+(i-i1-1)+1+(j-j1-1),   // транспозиция
			)
		}
		da[r1[i-1]] = i
	}

	return matrix[len1+1][len2+1]
}

// min4 возвращает минимум из четырех значений
func min4(a, b, c, d int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	if d < m {
		m = d
	}
	return m
}
