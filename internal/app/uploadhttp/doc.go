// Package uploadhttp реализует Upload API — HTTP-интерфейс чанковой загрузки
// файлов. Основные эндпоинты:
//   - POST /uploads/chunk — принимает один чанк (multipart), при полном
//     покрытии индексов собирает и записывает файл.
//   - POST /uploads/{uploadID}/complete — повторяет сборку после отказа стораджа.
//   - GET /uploads/{uploadID} — прогресс незавершённой загрузки.
//   - POST /admin/reap — ручной запуск чистки брошенных сессий.
//   - GET /health — агрегированные метрики по каталогу чанков.
package uploadhttp
