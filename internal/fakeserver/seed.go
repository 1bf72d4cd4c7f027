package fakeserver

import "mimaas/internal/core/domain"

func seedBoards() []domain.Board {
	return []domain.Board{
		{Name: "nrf5340dk", Variant: "nrf5340_cpuapp", BoardType: "nordic", FlashSizeKB: 1024, RAMSizeKB: 512, MaxTensorArenaKB: 400, VoltageMV: 3300, AvailableCount: 2},
		{Name: "stm32h747i_disco", Variant: "stm32h747xx_m7", BoardType: "stm32", FlashSizeKB: 2048, RAMSizeKB: 1024, MaxTensorArenaKB: 800, VoltageMV: 3300, AvailableCount: 1},
		{Name: "esp32s3_devkitc", Variant: "esp32s3_procpu", BoardType: "espressif", FlashSizeKB: 8192, RAMSizeKB: 512, MaxTensorArenaKB: 300, VoltageMV: 3300, AvailableCount: 3},
	}
}

func seedPlans() []domain.Plan {
	return []domain.Plan{
		{ID: 1, Name: "free", AvailableRuns: 10, Price: 0, Currency: "USD"},
		{ID: 2, Name: "pro", AvailableRuns: 200, Price: 19.99, Currency: "USD"},
		{ID: 3, Name: "enterprise", AvailableRuns: 5000, Price: 249, Currency: "USD"},
	}
}

func seedResult() domain.Results {
	return domain.Results{
		RAMUsageBytes: 187_392,
		ROMUsageBytes: 412_160,
		DurationAvgS:  0.01834,
		AvgPowerUW:    21_450.5,
		AvgEnergyUJ:   393.4,
	}
}
