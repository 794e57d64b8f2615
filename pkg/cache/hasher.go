package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"transport/internal/problem"
)

// ProblemHash вычисляет хеш задачи для использования как ключ кэша
func ProblemHash(p *problem.Problem) string {
	if p == nil {
		return ""
	}

	data := problemToCanonical(p)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// problemToCanonical создаёт детерминированное представление задачи.
// Порядок строк и столбцов значим, поэтому сортировка не нужна.
func problemToCanonical(p *problem.Problem) []byte {
	var result []byte

	// Размерность
	result = append(result, []byte(fmt.Sprintf("dim:%d:%d;", len(p.Supplies), len(p.Demands)))...)

	// Запасы
	for i, s := range p.Supplies {
		result = append(result, []byte(fmt.Sprintf("s:%d:%.6f;", i, s))...)
	}

	// Потребности
	for j, d := range p.Demands {
		result = append(result, []byte(fmt.Sprintf("d:%d:%.6f;", j, d))...)
	}

	// Матрица тарифов
	for i, row := range p.Costs {
		for j, c := range row {
			result = append(result, []byte(fmt.Sprintf("c:%d:%d:%.6f;", i, j, c))...)
		}
	}

	return result
}

// BuildSolveKey строит ключ кэша для результата решения
func BuildSolveKey(problemHash, strategy string) string {
	return fmt.Sprintf("solve:%s:%s", strategy, problemHash)
}

// BuildSolveKeyWithOptions строит ключ с учётом опций
func BuildSolveKeyWithOptions(problemHash, strategy, optionsHash string) string {
	if optionsHash == "" {
		return BuildSolveKey(problemHash, strategy)
	}
	return fmt.Sprintf("solve:%s:%s:%s", strategy, problemHash, optionsHash)
}

// QuickHash быстрый хеш для произвольных данных
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash короткий хеш (16 символов)
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
