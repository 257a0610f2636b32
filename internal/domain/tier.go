package domain

// Пороговые значения накопленных за все время баллов для каждого уровня.
// Границы включают нижнее значение диапазона: 1001 балл это уже SILVER.
const (
	silverThreshold   int64 = 1001
	goldThreshold     int64 = 5001
	platinumThreshold int64 = 10001
)

// TierFor вычисляет уровень лояльности по lifetime баллам. Чистая функция,
// уровень зависит только от суммы когда-либо начисленных баллов и никогда
// не понижается списаниями.
func TierFor(lifetimePoints int64) TierType {
	switch {
	case lifetimePoints >= platinumThreshold:
		return TierPlatinum
	case lifetimePoints >= goldThreshold:
		return TierGold
	case lifetimePoints >= silverThreshold:
		return TierSilver
	default:
		return TierBronze
	}
}
